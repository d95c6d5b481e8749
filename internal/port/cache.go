package port

import "fmt"

// CacheKey identifies one video's embedded frame sequence. ModTime and
// Stride are part of the key so edits to the file or a different
// sampling rate miss rather than serving stale vectors.
type CacheKey struct {
	Path    string
	ModTime int64
	Stride  int
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%d|%d", k.Path, k.ModTime, k.Stride)
}

// EmbeddingCache persists per-video embedding sequences between runs.
type EmbeddingCache interface {
	// Get returns the cached sequence for key, with ok=false on miss.
	Get(key CacheKey) (vectors [][]float32, ok bool, err error)

	// Put stores the sequence for key, replacing any previous entry.
	Put(key CacheKey, vectors [][]float32) error

	Close() error
}
