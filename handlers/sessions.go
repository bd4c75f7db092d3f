package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"go-siren/chain"
	"go-siren/evidence"
	"go-siren/geo"
	"go-siren/submission"
	"go-siren/types"
)

// SessionManager tracks one submission session per authenticated user.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*submission.Session
	cfg      submission.Config
}

func NewSessionManager(cfg submission.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*submission.Session),
		cfg:      cfg,
	}
}

func (m *SessionManager) session(privyUserID, address, publicKey string) *submission.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[privyUserID]; ok {
		return sess
	}
	sess := submission.NewSession(m.cfg, privyUserID, address, publicKey)
	m.sessions[privyUserID] = sess
	return sess
}

func (m *SessionManager) lookup(privyUserID string) *submission.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[privyUserID]
}

type startRequest struct {
	PrivyUserID string  `json:"privyUserId" binding:"required"`
	Address     string  `json:"address" binding:"required"`
	PublicKey   string  `json:"publicKey" binding:"required"`
	SignalType  int     `json:"signalType"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// StartSession begins a submission. Hazard and Traffic signals go on-chain
// immediately; Checkpoint and Noise wait for evidence.
func (m *SessionManager) StartSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sigType := types.SignalType(req.SignalType)
	if !sigType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown signal type"})
		return
	}

	sess := m.session(req.PrivyUserID, req.Address, req.PublicKey)
	err := sess.Start(c.Request.Context(), sigType, types.GeoPoint{Lat: req.Lat, Lon: req.Lon})
	if err != nil {
		respondSessionError(c, sess, err)
		return
	}

	c.JSON(http.StatusOK, sess.Status())
}

type noiseRequest struct {
	PrivyUserID string                 `json:"privyUserId" binding:"required"`
	NoiseData   types.NoiseMeasurement `json:"noiseData"`
}

// SubmitNoiseEvidence delivers a finished noise measurement for validation;
// accepted measurements submit the signal without further confirmation.
func (m *SessionManager) SubmitNoiseEvidence(c *gin.Context) {
	var req noiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := m.lookup(req.PrivyUserID)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	verdict, err := sess.CompleteNoiseMeasurement(c.Request.Context(), req.NoiseData)
	if err != nil {
		respondSessionError(c, sess, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verdict": verdict, "status": sess.Status()})
}

type imageRequest struct {
	PrivyUserID string              `json:"privyUserId" binding:"required"`
	ImageData   string              `json:"imageData" binding:"required"`
	Metadata    types.ImageMetadata `json:"metadata"`
}

// SubmitImageEvidence delivers a captured photo for validation.
func (m *SessionManager) SubmitImageEvidence(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := m.lookup(req.PrivyUserID)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	img := types.CheckpointImage{ImageData: req.ImageData, Metadata: req.Metadata}
	verdict, err := sess.CompleteImageCapture(c.Request.Context(), img)
	if err != nil {
		respondSessionError(c, sess, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verdict": verdict, "status": sess.Status()})
}

type sessionActionRequest struct {
	PrivyUserID string `json:"privyUserId" binding:"required"`
}

// CancelSession abandons an in-progress measurement.
func (m *SessionManager) CancelSession(c *gin.Context) {
	var req sessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := m.lookup(req.PrivyUserID)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}
	if err := sess.Cancel(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": sess.Status()})
		return
	}
	c.JSON(http.StatusOK, sess.Status())
}

// DismissSession acknowledges a completed submission.
func (m *SessionManager) DismissSession(c *gin.Context) {
	var req sessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := m.lookup(req.PrivyUserID)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}
	if err := sess.Dismiss(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": sess.Status()})
		return
	}
	c.JSON(http.StatusOK, sess.Status())
}

// SessionStatus reports the session's current state.
func (m *SessionManager) SessionStatus(c *gin.Context) {
	sess := m.lookup(c.Param("privyUserId"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, sess.Status())
}

// respondSessionError maps pipeline failures onto HTTP statuses, always
// including the session snapshot so the client can re-render.
func respondSessionError(c *gin.Context, sess *submission.Session, err error) {
	status := http.StatusBadGateway

	var execErr *chain.ExecutionError
	switch {
	case errors.Is(err, submission.ErrInProgress), errors.Is(err, submission.ErrWrongState):
		status = http.StatusConflict
	case errors.Is(err, geo.ErrOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, evidence.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.As(err, &execErr):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{"error": err.Error(), "status": sess.Status()})
}
