package app

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiritori/internal/domain"
)

const (
	matchCodeLength  = 6
	matchCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	cleanupInterval = 5 * time.Minute
	// staleTimeout is how long an idle match with no connected clients is
	// kept around before the cleanup loop removes it
	staleTimeout = 2 * time.Hour
	// endedLinger keeps an ended match visible long enough for clients to
	// fetch the final summary
	endedLinger = 10 * time.Minute
)

// ParticipantSpec describes one participant to create
type ParticipantSpec struct {
	Name       string            `json:"name"`
	Role       domain.Role       `json:"role"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
}

// CreateMatchRequest describes a match to create
type CreateMatchRequest struct {
	Participants     []ParticipantSpec   `json:"participants"`
	TimeLimitSeconds int                 `json:"timeLimitSeconds"`
	WinCondition     domain.WinCondition `json:"winCondition,omitempty"`
}

// MatchHub manages every live match session, keyed by join code
type MatchHub struct {
	sessions map[string]*MatchSession
	mu       sync.RWMutex
	logger   *zap.Logger
	words    domain.WordSource
	opts     SessionOptions
	done     chan struct{}
}

// NewMatchHub creates a hub and starts its cleanup loop
func NewMatchHub(words domain.WordSource, logger *zap.Logger, opts SessionOptions) *MatchHub {
	h := &MatchHub{
		sessions: make(map[string]*MatchSession),
		logger:   logger,
		words:    words,
		opts:     opts,
		done:     make(chan struct{}),
	}

	go h.cleanupLoop()

	return h
}

// CreateMatch builds a new match from the request and registers a session
// for it. Participant ids are assigned here; the caller relays them back so
// clients know who they are.
func (h *MatchHub) CreateMatch(req CreateMatchRequest) (*MatchSession, error) {
	participants := make([]domain.Participant, 0, len(req.Participants))
	for _, spec := range req.Participants {
		p := domain.Participant{
			ID:         uuid.NewString(),
			Name:       spec.Name,
			Role:       spec.Role,
			Difficulty: spec.Difficulty,
		}
		if p.Role == "" {
			p.Role = domain.RoleHuman
		}
		if p.Role == domain.RoleComputer && p.Difficulty == "" {
			p.Difficulty = domain.DifficultyNormal
		}
		participants = append(participants, p)
	}

	cfg := domain.MatchConfig{
		Participants:     participants,
		TimeLimitSeconds: req.TimeLimitSeconds,
		WinCondition:     req.WinCondition,
	}
	if cfg.WinCondition == "" {
		cfg.WinCondition = domain.WinLastStanding
	}

	match, err := domain.NewMatch(cfg, nil)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	code, err := h.generateUniqueCode()
	if err != nil {
		return nil, err
	}

	session := NewMatchSession(code, match, h.words, h.logger, h.opts)
	h.sessions[code] = session

	h.logger.Info("match created",
		zap.String("matchCode", code),
		zap.Int("participants", len(participants)),
		zap.String("winCondition", string(cfg.WinCondition)),
	)

	return session, nil
}

// RestoreMatch registers a session for a match rebuilt from a snapshot
func (h *MatchHub) RestoreMatch(snap domain.Snapshot) (*MatchSession, error) {
	match, err := domain.RestoreMatch(snap, nil)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	code, err := h.generateUniqueCode()
	if err != nil {
		return nil, err
	}

	session := NewMatchSession(code, match, h.words, h.logger, h.opts)
	h.sessions[code] = session
	session.ResumeClock()

	h.logger.Info("match restored",
		zap.String("matchCode", code),
		zap.String("phase", string(snap.Phase)),
		zap.Int("words", len(snap.UsedWords)),
	)

	return session, nil
}

// GetSession returns the session for a match code
func (h *MatchHub) GetSession(code string) (*MatchSession, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	session, ok := h.sessions[code]
	return session, ok
}

// RemoveSession closes and removes a session
func (h *MatchHub) RemoveSession(code string) {
	h.mu.Lock()
	session, ok := h.sessions[code]
	if ok {
		delete(h.sessions, code)
	}
	h.mu.Unlock()

	if ok {
		session.Close()
		h.logger.Info("match removed", zap.String("matchCode", code))
	}
}

// GetSessionCount returns the number of live sessions
func (h *MatchHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// generateUniqueCode must be called with h.mu held
func (h *MatchHub) generateUniqueCode() (string, error) {
	for attempts := 0; attempts < 100; attempts++ {
		code, err := generateCode(matchCodeLength)
		if err != nil {
			return "", err
		}
		if _, exists := h.sessions[code]; !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique match code")
}

func generateCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(matchCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = matchCodeCharset[n.Int64()]
	}
	return string(code), nil
}

func (h *MatchHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanup()
		}
	}
}

func (h *MatchHub) cleanup() {
	h.mu.Lock()
	var stale []string
	for code, session := range h.sessions {
		age := time.Since(session.GetCreatedAt())
		switch {
		case session.GetPhase() == domain.PhaseEnded && age > endedLinger:
			stale = append(stale, code)
		case session.GetClientCount() == 0 && age > staleTimeout:
			stale = append(stale, code)
		}
	}

	sessions := make([]*MatchSession, 0, len(stale))
	for _, code := range stale {
		sessions = append(sessions, h.sessions[code])
		delete(h.sessions, code)
	}
	h.mu.Unlock()

	for i, session := range sessions {
		session.Close()
		h.logger.Info("cleaned up stale match", zap.String("matchCode", stale[i]))
	}
}

// Close shuts down the hub and every session
func (h *MatchHub) Close() {
	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}

	h.mu.Lock()
	sessions := make([]*MatchSession, 0, len(h.sessions))
	for _, session := range h.sessions {
		sessions = append(sessions, session)
	}
	h.sessions = make(map[string]*MatchSession)
	h.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
