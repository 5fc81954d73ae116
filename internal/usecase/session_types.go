package usecase

import (
	"log/slog"
	"sync"

	"translatoroverlay/internal/domain"
)

type activeSession struct {
	id     string
	logger *slog.Logger
	done   chan struct{}

	stateMu sync.Mutex
	state   domain.SessionState
}

func newActiveSession(id string, logger *slog.Logger) *activeSession {
	return &activeSession{
		id:     id,
		logger: logger.With("session", id),
		done:   make(chan struct{}),
		state:  domain.SessionStateCalibrating,
	}
}

func (s *activeSession) setState(state domain.SessionState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *activeSession) getState() domain.SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}
