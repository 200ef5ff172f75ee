package picker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anthonypate54/familynest/pkg/common"
)

// Presenter shows the external document picker for a session. The picker
// reports back through SessionManager.Complete or Cancel.
type Presenter interface {
	Present(ctx context.Context, s *Session) error
}

type PresenterFunc func(ctx context.Context, s *Session) error

func (f PresenterFunc) Present(ctx context.Context, s *Session) error {
	return f(ctx, s)
}

// AnnouncePresenter only logs the session; the external picker discovers it
// by polling for the current session over the gateway API.
type AnnouncePresenter struct{}

func (AnnouncePresenter) Present(ctx context.Context, s *Session) error {
	log.Info().
		Str("session_id", s.ID).
		Bool("multiple_selection", s.MultipleSelection).
		Strs("document_types", s.DocumentTypes).
		Msg("waiting for picker selection")
	return nil
}

// RedisPresenter publishes the pending session under its own key so a picker
// running against another gateway replica can find it. The record expires on
// its own once ttl passes.
type RedisPresenter struct {
	rdb *common.RedisClient
	ttl time.Duration
}

func NewRedisPresenter(rdb *common.RedisClient, ttl time.Duration) *RedisPresenter {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisPresenter{rdb: rdb, ttl: ttl}
}

func (p *RedisPresenter) Present(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := p.rdb.Set(ctx, common.Keys.PickerSession(s.ID), payload, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to publish picker session: %w", err)
	}
	return AnnouncePresenter{}.Present(ctx, s)
}
