package submission

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go-siren/types"
)

// SampleSource produces decibel readings from an audio capture device.
// Close must release the underlying audio resource.
type SampleSource interface {
	Sample() (float64, error)
	Close() error
}

var (
	// ErrNotRecording is returned when stopping a recorder that never
	// started.
	ErrNotRecording = errors.New("recorder is not recording")

	// ErrSourceClosed is returned when starting a recorder whose audio
	// source has already been released.
	ErrSourceClosed = errors.New("audio source already released")
)

// Recorder aggregates decibel samples over a recording session. Whether a
// minimum has been observed is tracked explicitly rather than with a
// sentinel floor value, since legitimate readings can exceed any sentinel.
//
// A Recorder is single-use: Stop and Discard release the source, and a new
// measurement needs a new Recorder around a fresh source.
type Recorder struct {
	mu        sync.Mutex
	source    SampleSource
	samples   []float64
	max       float64
	min       float64
	hasSample bool
	started   time.Time
	recording bool
	stop      chan struct{}
	closed    bool
}

func NewRecorder(source SampleSource) *Recorder {
	return &Recorder{source: source}
}

// Start begins the recording session. Starting again after Stop or Discard
// fails: the source is gone.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrSourceClosed
	}

	r.samples = nil
	r.max = 0
	r.min = 0
	r.hasSample = false
	r.started = time.Now()
	r.recording = true
	r.stop = make(chan struct{})
	return nil
}

// Add records one decibel reading.
func (r *Recorder) Add(db float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}

	r.samples = append(r.samples, db)
	if !r.hasSample {
		r.max = db
		r.min = db
		r.hasSample = true
		return
	}
	r.max = math.Max(r.max, db)
	r.min = math.Min(r.min, db)
}

// Run pumps samples from the source at the given interval until the context
// is cancelled or the recorder is stopped. The audio resource is released on
// every exit path.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) error {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return ErrNotRecording
	}
	stop := r.stop
	r.mu.Unlock()

	defer r.closeSource()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			db, err := r.source.Sample()
			if err != nil {
				return err
			}
			r.Add(db)
		}
	}
}

// Stop ends the session and returns the immutable measurement. With no
// samples recorded, all levels are zero.
func (r *Recorder) Stop() (types.NoiseMeasurement, error) {
	r.mu.Lock()

	if !r.recording {
		r.mu.Unlock()
		return types.NoiseMeasurement{}, ErrNotRecording
	}
	r.recording = false
	close(r.stop)

	samples := r.samples
	max, min := r.max, r.min
	hasSample := r.hasSample
	duration := math.Floor(time.Since(r.started).Seconds())
	r.mu.Unlock()

	r.closeSource()

	if !hasSample {
		return types.NoiseMeasurement{Samples: []float64{}, Duration: duration}, nil
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}

	return types.NoiseMeasurement{
		Max:      max,
		Min:      min,
		Avg:      sum / float64(len(samples)),
		Samples:  samples,
		Duration: duration,
	}, nil
}

// Discard cancels the session and drops all collected samples.
func (r *Recorder) Discard() {
	r.mu.Lock()
	if r.recording {
		r.recording = false
		close(r.stop)
	}
	r.samples = nil
	r.hasSample = false
	r.mu.Unlock()

	r.closeSource()
}

func (r *Recorder) closeSource() {
	r.mu.Lock()
	if r.closed || r.source == nil {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.source.Close()
}
