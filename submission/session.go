package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go-siren/chain"
	"go-siren/evidence"
	"go-siren/types"
)

// State is the orchestrator's position in the submission flow.
type State string

const (
	StateSelect     State = "select"
	StateMeasuring  State = "measuring"
	StateSubmitting State = "submitting"
	StateComplete   State = "complete"
)

// defaultErrorDisplay is how long a transient error stays visible before the
// status clears it.
const defaultErrorDisplay = 10 * time.Second

var (
	// ErrInProgress guards against duplicate submissions from rapid
	// repeated triggers; re-entry while in flight is a no-op.
	ErrInProgress = errors.New("submission already in progress")

	// ErrWrongState is returned when an action does not apply to the
	// session's current state.
	ErrWrongState = errors.New("action not valid in current state")
)

// TxSubmitter is the slice of chain.Submitter the session needs.
type TxSubmitter interface {
	Submit(ctx context.Context, sender, senderPublicKey string, signer chain.Signer, payload chain.EntryFunctionPayload) (string, error)
}

// MeasurementStore persists audit records after successful submissions.
type MeasurementStore interface {
	SaveMeasurement(ctx context.Context, m *types.Measurement) (string, error)
}

// Config carries the session's collaborators. Store may be nil; audit
// persistence is best-effort.
type Config struct {
	Builder      *chain.Builder
	Submitter    TxSubmitter
	Validator    evidence.Validator
	Store        MeasurementStore
	Signer       chain.Signer
	ErrorDisplay time.Duration
}

// Status is a snapshot of the session for the client.
type Status struct {
	State      State            `json:"state"`
	SignalType types.SignalType `json:"signalType"`
	TxHash     string           `json:"txHash,omitempty"`
	Error      string           `json:"error,omitempty"`
	Verdict    *types.Verdict   `json:"verdict,omitempty"`
}

// Session sequences one user's signal submission: evidence validation for
// the gated types, then profile init, signal submission and audit logging.
// A session never runs two submissions concurrently.
type Session struct {
	mu  sync.Mutex
	cfg Config

	privyUserID string
	address     string
	publicKey   string

	state       State
	signalType  types.SignalType
	location    types.GeoPoint
	txHash      string
	lastError   string
	lastVerdict *types.Verdict
	errTimer    *time.Timer
	inFlight    bool
}

func NewSession(cfg Config, privyUserID, address, publicKey string) *Session {
	if cfg.ErrorDisplay == 0 {
		cfg.ErrorDisplay = defaultErrorDisplay
	}
	return &Session{
		cfg:         cfg,
		privyUserID: privyUserID,
		address:     address,
		publicKey:   publicKey,
		state:       StateSelect,
	}
}

// Start begins a submission for the chosen signal type at the given
// location. Evidence-gated types move to Measuring and wait for evidence;
// Hazard and Traffic submit directly. Starting while a flow is already in
// progress is rejected without side effects.
func (s *Session) Start(ctx context.Context, sigType types.SignalType, loc types.GeoPoint) error {
	if !sigType.Valid() {
		return fmt.Errorf("invalid signal type %d", int(sigType))
	}

	s.mu.Lock()
	if s.state != StateSelect || s.inFlight {
		s.mu.Unlock()
		return ErrInProgress
	}

	s.signalType = sigType
	s.location = loc
	s.clearErrorLocked()

	if sigType.RequiresEvidence() {
		s.state = StateMeasuring
		s.mu.Unlock()
		return nil
	}

	s.state = StateSubmitting
	s.inFlight = true
	s.mu.Unlock()

	return s.submit(ctx, nil, nil, nil)
}

// CompleteNoiseMeasurement validates a finished noise recording and, when
// accepted, advances straight to submission. Rejection returns the session
// to Select with the verdict shown as a transient error.
func (s *Session) CompleteNoiseMeasurement(ctx context.Context, m types.NoiseMeasurement) (types.Verdict, error) {
	s.mu.Lock()
	if s.state != StateMeasuring || s.signalType != types.NoiseLevel {
		s.mu.Unlock()
		return types.Verdict{}, ErrWrongState
	}
	loc := s.location
	s.mu.Unlock()

	verdict, err := s.cfg.Validator.ValidateNoise(ctx, m, loc)
	if err != nil {
		s.failToSelect("Failed to analyze noise data. Please try again.")
		return types.Verdict{}, err
	}

	if !verdict.Accepted {
		s.rejectToSelect(fmt.Sprintf(
			"No significant noise pollution detected (%d%% confidence, severity: %s). %s",
			verdict.Confidence, verdict.Severity, verdict.Detail), verdict)
		return verdict, nil
	}

	// The classifier ran unlocked; the user may have cancelled (or another
	// request may have advanced the session) in the meantime.
	s.mu.Lock()
	if s.state != StateMeasuring {
		s.mu.Unlock()
		return verdict, ErrWrongState
	}
	if s.inFlight {
		s.mu.Unlock()
		return verdict, ErrInProgress
	}
	s.state = StateSubmitting
	s.inFlight = true
	s.lastVerdict = &verdict
	s.mu.Unlock()

	return verdict, s.submit(ctx, &m, nil, &verdict)
}

// CompleteImageCapture validates a captured photo and, when accepted,
// advances straight to submission.
func (s *Session) CompleteImageCapture(ctx context.Context, img types.CheckpointImage) (types.Verdict, error) {
	s.mu.Lock()
	if s.state != StateMeasuring {
		s.mu.Unlock()
		return types.Verdict{}, ErrWrongState
	}
	sigType := s.signalType
	loc := s.location
	s.mu.Unlock()

	verdict, err := s.cfg.Validator.ValidateImage(ctx, img, sigType, loc)
	if err != nil {
		s.failToSelect("Failed to analyze image. Please try again.")
		return types.Verdict{}, err
	}

	if !verdict.Accepted {
		detail := verdict.Detail
		if len(detail) > 150 {
			detail = detail[:150]
		}
		s.rejectToSelect(fmt.Sprintf(
			"Checkpoint not detected (%d%% confidence). %s", verdict.Confidence, detail), verdict)
		return verdict, nil
	}

	s.mu.Lock()
	if s.state != StateMeasuring {
		s.mu.Unlock()
		return verdict, ErrWrongState
	}
	if s.inFlight {
		s.mu.Unlock()
		return verdict, ErrInProgress
	}
	s.state = StateSubmitting
	s.inFlight = true
	s.lastVerdict = &verdict
	s.mu.Unlock()

	return verdict, s.submit(ctx, nil, &img, &verdict)
}

// Cancel abandons an in-progress measurement and discards its data. The
// chain call is not abortable, so cancel only applies while Measuring.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateMeasuring {
		return ErrWrongState
	}
	s.state = StateSelect
	s.lastVerdict = nil
	return nil
}

// Dismiss resets a completed session back to Select.
func (s *Session) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete {
		return ErrWrongState
	}
	s.state = StateSelect
	s.txHash = ""
	s.lastVerdict = nil
	return nil
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		State:      s.state,
		SignalType: s.signalType,
		TxHash:     s.txHash,
		Error:      s.lastError,
		Verdict:    s.lastVerdict,
	}
}

// submit runs the Submitting sequence: best-effort profile init, mandatory
// signal submission, best-effort audit persistence.
func (s *Session) submit(ctx context.Context, noise *types.NoiseMeasurement, img *types.CheckpointImage, verdict *types.Verdict) error {
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	// Profile init fails when the profile already exists; that is expected
	// and never aborts the submission.
	if _, err := s.cfg.Submitter.Submit(ctx, s.address, s.publicKey, s.cfg.Signer, s.cfg.Builder.InitProfileTx()); err != nil {
		log.Printf("Profile init warning for %s: %v", s.address, err)
	}

	payload, err := s.cfg.Builder.SubmitSignalTx(s.signalType, s.location.Lat, s.location.Lon)
	if err != nil {
		s.failToSelect(err.Error())
		return err
	}

	hash, err := s.cfg.Submitter.Submit(ctx, s.address, s.publicKey, s.cfg.Signer, payload)
	if err != nil {
		s.failToSelect(err.Error())
		return err
	}

	if s.cfg.Store != nil && (noise != nil || img != nil) {
		record := &types.Measurement{
			PrivyUserID:   s.privyUserID,
			SignalType:    s.signalType,
			Lat:           s.location.Lat,
			Lon:           s.location.Lon,
			NoiseData:     noise,
			TxHash:        hash,
			ImageAnalysis: verdict,
		}
		if img != nil {
			record.ImageURL = img.ImageData
			metadata := img.Metadata
			record.ImageMetadata = &metadata
		}
		// Persistence failure never rolls back a confirmed chain write.
		if _, err := s.cfg.Store.SaveMeasurement(ctx, record); err != nil {
			log.Printf("Failed to save measurement for %s: %v", s.privyUserID, err)
		}
	}

	s.mu.Lock()
	s.state = StateComplete
	s.txHash = hash
	s.mu.Unlock()
	return nil
}

func (s *Session) rejectToSelect(message string, verdict types.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateSelect
	s.lastVerdict = &verdict
	s.setErrorLocked(message)
}

func (s *Session) failToSelect(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateSelect
	s.setErrorLocked(message)
}

func (s *Session) setErrorLocked(message string) {
	s.lastError = message
	if s.errTimer != nil {
		s.errTimer.Stop()
	}
	s.errTimer = time.AfterFunc(s.cfg.ErrorDisplay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastError == message {
			s.lastError = ""
		}
	})
}

func (s *Session) clearErrorLocked() {
	s.lastError = ""
	s.lastVerdict = nil
	if s.errTimer != nil {
		s.errTimer.Stop()
		s.errTimer = nil
	}
}
