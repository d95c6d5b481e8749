package domain

import "fmt"

// SourceError reports an unreadable corpus input: a missing directory,
// a corrupt or undecodable video, or a container whose frame rate
// cannot be determined.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ShapeError reports an embedding whose length disagrees with the
// dimension established for the run. The embedder contract makes this
// unreachable in a correct setup; it is checked anyway so a stale cache
// or misbehaving model fails loudly instead of producing a ragged
// tensor downstream.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// IndexError reports an out-of-range access into the assembled corpus.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Size)
}
