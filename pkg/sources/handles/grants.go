package handles

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anthonypate54/familynest/pkg/common"
)

// Grant records that long-lived read access to a handle was persisted.
type Grant struct {
	URI       string    `json:"uri"`
	Scheme    string    `json:"scheme"`
	GrantedAt time.Time `json:"granted_at"`
}

type GrantStore interface {
	Save(ctx context.Context, g Grant) error
	Get(ctx context.Context, uri string) (*Grant, error) // nil, nil when absent
	List(ctx context.Context) ([]Grant, error)
}

// MemoryGrantStore keeps grants for the lifetime of the process
type MemoryGrantStore struct {
	mu     sync.RWMutex
	grants map[string]Grant
}

func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{grants: make(map[string]Grant)}
}

func (s *MemoryGrantStore) Save(ctx context.Context, g Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[g.URI] = g
	return nil
}

func (s *MemoryGrantStore) Get(ctx context.Context, uri string) (*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[uri]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (s *MemoryGrantStore) List(ctx context.Context) ([]Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Grant, 0, len(s.grants))
	for _, g := range s.grants {
		out = append(out, g)
	}
	sortGrants(out)
	return out, nil
}

// RedisGrantStore keeps grants in a single hash so they survive restarts
type RedisGrantStore struct {
	rdb *common.RedisClient
}

func NewRedisGrantStore(rdb *common.RedisClient) *RedisGrantStore {
	return &RedisGrantStore{rdb: rdb}
}

func (s *RedisGrantStore) Save(ctx context.Context, g Grant) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, common.Keys.GrantIndex(), g.URI, data).Err()
}

func (s *RedisGrantStore) Get(ctx context.Context, uri string) (*Grant, error) {
	data, err := s.rdb.HGet(ctx, common.Keys.GrantIndex(), uri).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var g Grant
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *RedisGrantStore) List(ctx context.Context) ([]Grant, error) {
	all, err := s.rdb.HGetAll(ctx, common.Keys.GrantIndex()).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Grant, 0, len(all))
	for _, raw := range all {
		var g Grant
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			continue
		}
		out = append(out, g)
	}
	sortGrants(out)
	return out, nil
}

func sortGrants(gs []Grant) {
	sort.Slice(gs, func(i, j int) bool { return gs[i].URI < gs[j].URI })
}
