package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-siren/chain"
	"go-siren/evidence"
	"go-siren/submission"
	"go-siren/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubSubmitter returns a canned hash, or a canned error for submit_signal.
type stubSubmitter struct {
	hash      string
	submitErr error
}

func (s *stubSubmitter) Submit(_ context.Context, _, _ string, _ chain.Signer, payload chain.EntryFunctionPayload) (string, error) {
	if strings.HasSuffix(payload.Function, "::submit_signal") && s.submitErr != nil {
		return "", s.submitErr
	}
	return s.hash, nil
}

type stubValidator struct {
	verdict types.Verdict
	err     error
}

func (s *stubValidator) ValidateNoise(context.Context, types.NoiseMeasurement, types.GeoPoint) (types.Verdict, error) {
	return s.verdict, s.err
}

func (s *stubValidator) ValidateImage(context.Context, types.CheckpointImage, types.SignalType, types.GeoPoint) (types.Verdict, error) {
	return s.verdict, s.err
}

func newSessionRouter(submitter submission.TxSubmitter, validator evidence.Validator) *gin.Engine {
	m := NewSessionManager(submission.Config{
		Builder:      chain.NewBuilder("0xmodule", ""),
		Submitter:    submitter,
		Validator:    validator,
		ErrorDisplay: time.Minute,
	})

	r := gin.New()
	r.POST("/session/start", m.StartSession)
	r.POST("/session/noise", m.SubmitNoiseEvidence)
	r.POST("/session/image", m.SubmitImageEvidence)
	r.POST("/session/cancel", m.CancelSession)
	r.POST("/session/dismiss", m.DismissSession)
	r.GET("/session/:privyUserId", m.SessionStatus)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startBody(signalType int) map[string]any {
	return map[string]any{
		"privyUserId": "privy-user-1",
		"address":     "0xa11ce",
		"publicKey":   "0xpubkey",
		"signalType":  signalType,
		"lat":         37.7749,
		"lon":         -122.4194,
	}
}

func TestStartSessionDirectSignal(t *testing.T) {
	t.Parallel()

	r := newSessionRouter(&stubSubmitter{hash: "0xhazard"}, &stubValidator{})
	w := postJSON(t, r, "/session/start", startBody(int(types.Hazard)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var status submission.Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.State != submission.StateComplete || status.TxHash != "0xhazard" {
		t.Errorf("status = %+v, want completed submission", status)
	}
}

func TestStartSessionRejectsBadRequests(t *testing.T) {
	t.Parallel()

	r := newSessionRouter(&stubSubmitter{hash: "0x1"}, &stubValidator{})

	// Missing required fields.
	w := postJSON(t, r, "/session/start", map[string]any{"signalType": 2})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields: status = %d, want 400", w.Code)
	}

	// Unknown signal type.
	w = postJSON(t, r, "/session/start", startBody(9))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown signal type: status = %d, want 400", w.Code)
	}
}

func TestNoiseEvidenceFlow(t *testing.T) {
	t.Parallel()

	validator := &stubValidator{verdict: types.Verdict{Accepted: true, Confidence: 80, Severity: "moderate"}}
	r := newSessionRouter(&stubSubmitter{hash: "0xnoise"}, validator)

	if w := postJSON(t, r, "/session/start", startBody(int(types.NoiseLevel))); w.Code != http.StatusOK {
		t.Fatalf("start: status = %d, body = %s", w.Code, w.Body.String())
	}

	w := postJSON(t, r, "/session/noise", map[string]any{
		"privyUserId": "privy-user-1",
		"noiseData":   types.NoiseMeasurement{Avg: 80, Max: 90, Samples: []float64{80, 90}, Duration: 4},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("noise: status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Verdict types.Verdict     `json:"verdict"`
		Status  submission.Status `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Verdict.Accepted {
		t.Error("verdict should be accepted")
	}
	if resp.Status.State != submission.StateComplete || resp.Status.TxHash != "0xnoise" {
		t.Errorf("status = %+v, want completed", resp.Status)
	}
}

func TestNoiseEvidenceWithoutSession(t *testing.T) {
	t.Parallel()

	r := newSessionRouter(&stubSubmitter{hash: "0x1"}, &stubValidator{})
	w := postJSON(t, r, "/session/noise", map[string]any{
		"privyUserId": "nobody",
		"noiseData":   types.NoiseMeasurement{},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSessionErrorStatusMapping(t *testing.T) {
	t.Parallel()

	t.Run("duplicate start conflicts", func(t *testing.T) {
		t.Parallel()
		r := newSessionRouter(&stubSubmitter{hash: "0x1"}, &stubValidator{})

		if w := postJSON(t, r, "/session/start", startBody(int(types.NoiseLevel))); w.Code != http.StatusOK {
			t.Fatalf("first start failed: %d", w.Code)
		}
		if w := postJSON(t, r, "/session/start", startBody(int(types.Hazard))); w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})

	t.Run("classifier outage is 503", func(t *testing.T) {
		t.Parallel()
		r := newSessionRouter(&stubSubmitter{hash: "0x1"}, &stubValidator{err: evidence.ErrUnavailable})

		if w := postJSON(t, r, "/session/start", startBody(int(types.NoiseLevel))); w.Code != http.StatusOK {
			t.Fatalf("start failed: %d", w.Code)
		}
		w := postJSON(t, r, "/session/noise", map[string]any{
			"privyUserId": "privy-user-1",
			"noiseData":   types.NoiseMeasurement{Avg: 80},
		})
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})

	t.Run("reverted transaction is 422", func(t *testing.T) {
		t.Parallel()
		submitter := &stubSubmitter{
			hash:      "0x1",
			submitErr: &chain.ExecutionError{Hash: "0xfail", VMStatus: "Move abort: INSUFFICIENT_BALANCE"},
		}
		r := newSessionRouter(submitter, &stubValidator{})

		w := postJSON(t, r, "/session/start", startBody(int(types.Hazard)))
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422, body = %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "INSUFFICIENT_BALANCE") {
			t.Errorf("body %q should carry the vm status", w.Body.String())
		}
	})

	t.Run("cancel outside measuring conflicts", func(t *testing.T) {
		t.Parallel()
		r := newSessionRouter(&stubSubmitter{hash: "0x1"}, &stubValidator{})

		if w := postJSON(t, r, "/session/start", startBody(int(types.Hazard))); w.Code != http.StatusOK {
			t.Fatalf("start failed: %d", w.Code)
		}
		w := postJSON(t, r, "/session/cancel", map[string]any{"privyUserId": "privy-user-1"})
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})
}

func TestSessionStatusEndpoint(t *testing.T) {
	t.Parallel()

	r := newSessionRouter(&stubSubmitter{hash: "0x1"}, &stubValidator{})

	req := httptest.NewRequest(http.MethodGet, "/session/unknown", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", w.Code)
	}

	if w := postJSON(t, r, "/session/start", startBody(int(types.NoiseLevel))); w.Code != http.StatusOK {
		t.Fatalf("start failed: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/session/privy-user-1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var status submission.Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.State != submission.StateMeasuring {
		t.Errorf("state = %q, want measuring", status.State)
	}
}

func TestImageEvidenceRejection(t *testing.T) {
	t.Parallel()

	validator := &stubValidator{verdict: types.Verdict{
		Accepted:   false,
		Confidence: 60,
		Detail:     "Empty street, no law enforcement visible",
	}}
	r := newSessionRouter(&stubSubmitter{hash: "0xnever"}, validator)

	if w := postJSON(t, r, "/session/start", startBody(int(types.Checkpoint))); w.Code != http.StatusOK {
		t.Fatalf("start failed: %d", w.Code)
	}

	w := postJSON(t, r, "/session/image", map[string]any{
		"privyUserId": "privy-user-1",
		"imageData":   "base64-image",
		"metadata":    types.ImageMetadata{Timestamp: 1700000000},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("image: status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Verdict types.Verdict     `json:"verdict"`
		Status  submission.Status `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Verdict.Accepted {
		t.Error("verdict should be rejected")
	}
	if resp.Status.State != submission.StateSelect {
		t.Errorf("state = %q, want select after rejection", resp.Status.State)
	}
	if !strings.Contains(resp.Status.Error, "Checkpoint not detected") {
		t.Errorf("status error = %q", resp.Status.Error)
	}
}
