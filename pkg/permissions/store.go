package permissions

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/types"
)

// Store holds the process-wide permission outcome per media kind. Listing reads
// a snapshot; only the external grant flow writes.
type Store struct {
	mu       sync.RWMutex
	statuses map[types.Kind]types.PermissionStatus
}

func NewStore(initial map[types.Kind]types.PermissionStatus) *Store {
	s := &Store{statuses: make(map[types.Kind]types.PermissionStatus, len(initial))}
	for k, v := range initial {
		s.statuses[k] = v
	}
	return s
}

func (s *Store) Snapshot() types.PermissionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.NewPermissionState(s.statuses)
}

func (s *Store) Set(kind types.Kind, status types.PermissionStatus) {
	s.mu.Lock()
	prev := s.statuses[kind]
	s.statuses[kind] = status
	s.mu.Unlock()

	if prev != status {
		log.Info().Str("kind", string(kind)).Str("status", string(status)).Msg("media permission updated")
	}
}
