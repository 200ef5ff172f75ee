package picker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/common"
	"github.com/anthonypate54/familynest/pkg/metrics"
	"github.com/anthonypate54/familynest/pkg/types"
)

type Mode string

const (
	ModeMultiple Mode = "multiple"
	ModeSingle   Mode = "single"
)

// DocumentTypes is the set of content types the external picker is asked to offer.
var DocumentTypes = []string{
	"public.image",
	"public.movie",
	"public.video",
	"public.audio",
	"com.adobe.pdf",
	"public.text",
	"public.data",
	"public.item",
}

// Session is one pending picker presentation. Only the holder of its ID can
// complete or cancel it.
type Session struct {
	ID                string    `json:"id" yaml:"id"`
	Mode              Mode      `json:"mode" yaml:"mode"`
	MultipleSelection bool      `json:"multiple_selection" yaml:"multiple_selection"`
	DocumentTypes     []string  `json:"document_types" yaml:"document_types"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`

	result chan Outcome
}

// Outcome is what the external picker reported for a session.
type Outcome struct {
	Handles   []string
	Cancelled bool
}

// SessionManager allows at most one pending session. A second Open while one
// is pending fails with SESSION_BUSY rather than replacing the first.
type SessionManager struct {
	mu      sync.Mutex
	current *Session
	guard   Guard
	now     func() time.Time
}

func NewSessionManager(guard Guard) *SessionManager {
	return &SessionManager{guard: guard, now: time.Now}
}

func (m *SessionManager) Open(ctx context.Context, mode Mode) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		metrics.RecordPickerSession(metrics.PickerRejected)
		return nil, types.NewSessionBusyError(m.current.ID)
	}

	if m.guard != nil {
		if err := m.guard.Acquire(ctx); err != nil {
			metrics.RecordPickerSession(metrics.PickerRejected)
			if errors.Is(err, common.ErrLockNotAcquired) {
				return nil, types.NewSessionBusyError("held by another gateway")
			}
			return nil, fmt.Errorf("failed to acquire picker guard: %w", err)
		}
	}

	s := &Session{
		ID:                common.GenerateSessionID(),
		Mode:              mode,
		MultipleSelection: mode == ModeMultiple,
		DocumentTypes:     append([]string(nil), DocumentTypes...),
		CreatedAt:         m.now().UTC(),
		result:            make(chan Outcome, 1),
	}
	m.current = s

	log.Info().Str("session_id", s.ID).Str("mode", string(mode)).Msg("picker session opened")
	return s, nil
}

// Current returns the pending session, if any.
func (m *SessionManager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	s := *m.current
	s.result = nil
	return &s, true
}

// Complete delivers the picked handles to the waiting caller.
func (m *SessionManager) Complete(sessionID string, handles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.pendingLocked(sessionID)
	if err != nil {
		return err
	}
	if s.Mode == ModeSingle && len(handles) > 1 {
		return types.NewInvalidArgumentError(fmt.Sprintf("single-select session %s received %d handles", sessionID, len(handles)))
	}

	m.finishLocked(s, Outcome{Handles: append([]string(nil), handles...)})
	metrics.RecordPickerSession(metrics.PickerCompleted)
	log.Info().Str("session_id", sessionID).Int("handles", len(handles)).Msg("picker session completed")
	return nil
}

// Cancel ends the session with an empty selection.
func (m *SessionManager) Cancel(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.pendingLocked(sessionID)
	if err != nil {
		return err
	}

	m.finishLocked(s, Outcome{Cancelled: true})
	metrics.RecordPickerSession(metrics.PickerCancelled)
	log.Info().Str("session_id", sessionID).Msg("picker session cancelled")
	return nil
}

// Wait blocks until the session finishes or ctx is done. When ctx ends first
// the session is dropped so a new one can be opened.
func (m *SessionManager) Wait(ctx context.Context, s *Session) (Outcome, error) {
	var refresh <-chan time.Time
	if m.guard != nil {
		if every := m.guard.TTL() / 3; every > 0 {
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			refresh = ticker.C
		}
	}

	for {
		select {
		case out := <-s.result:
			return out, nil
		case <-refresh:
			if err := m.guard.Refresh(ctx); err != nil {
				log.Warn().Err(err).Str("session_id", s.ID).Msg("failed to refresh picker guard")
			}
		case <-ctx.Done():
			// a completion accepted before the drop still wins
			if !m.abandon(s) {
				select {
				case out := <-s.result:
					return out, nil
				default:
				}
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return Outcome{}, types.NewTimeoutError(ctx.Err())
			}
			return Outcome{}, ctx.Err()
		}
	}
}

// abandon drops s if it is still the pending session and reports whether it did.
func (m *SessionManager) abandon(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != s {
		return false
	}
	m.current = nil
	m.releaseGuardLocked()
	metrics.RecordPickerSession(metrics.PickerExpired)
	log.Warn().Str("session_id", s.ID).Msg("picker session abandoned before completion")
	return true
}

func (m *SessionManager) pendingLocked(sessionID string) (*Session, error) {
	if m.current == nil || m.current.ID != sessionID {
		return nil, types.NewNotFoundError(fmt.Sprintf("no pending picker session %s", sessionID))
	}
	return m.current, nil
}

func (m *SessionManager) finishLocked(s *Session, out Outcome) {
	s.result <- out
	m.current = nil
	m.releaseGuardLocked()
}

func (m *SessionManager) releaseGuardLocked() {
	if m.guard == nil {
		return
	}
	if err := m.guard.Release(); err != nil {
		log.Error().Err(err).Msg("failed to release picker guard")
	}
}
