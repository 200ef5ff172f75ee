package handles

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultIndexSize = 1024

// Index remembers which cache file a handle identity was materialized to, so
// repeated resolutions return the same path.
type Index struct {
	cache *lru.Cache[string, string]
}

func NewIndex(size int) (*Index, error) {
	if size <= 0 {
		size = DefaultIndexSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Index{cache: cache}, nil
}

// Get returns the recorded path only while the file still exists.
func (i *Index) Get(identity string) (string, bool) {
	path, ok := i.cache.Get(identity)
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		i.cache.Remove(identity)
		return "", false
	}
	return path, true
}

func (i *Index) Put(identity, path string) {
	i.cache.Add(identity, path)
}

func (i *Index) Len() int {
	return i.cache.Len()
}
