// Package window turns flat per-video embedding sequences into
// supervised (context, target) training examples.
package window

import (
	"sync"

	"frameset/internal/domain"
)

// Builder assembles sliding-window examples. The context of the
// example at index i holds the size preceding embeddings, oldest
// first; slots that would reach before the start of the sequence hold
// the null embedding, a zero vector sized from the first real
// embedding seen in the run.
//
// A Builder is created once per run and may be shared: the dimension
// learned from the first sequence is enforced on every later one, so
// windows assembled from different videos can be stacked into one
// uniform tensor.
type Builder struct {
	size int

	mu   sync.Mutex
	dim  int
	null []float32
}

// NewBuilder creates a builder for the given window size. Size must be
// at least 1; config validation enforces this before construction.
func NewBuilder(size int) *Builder {
	return &Builder{size: size}
}

// Size returns the window size.
func (b *Builder) Size() int { return b.size }

// Dimension returns the embedding dimension learned from the first
// sequence, or 0 if nothing has been built yet.
func (b *Builder) Dimension() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dim
}

// Build produces exactly one example per input embedding. Windows
// never cross the boundaries of the given sequence: history for the
// earliest indices is padded with the null embedding instead of
// reaching into a previous video. An empty sequence yields no examples
// and no error.
func (b *Builder) Build(embeddings [][]float32) ([]domain.Example, error) {
	if len(embeddings) == 0 {
		return nil, nil
	}

	null, err := b.nullFor(len(embeddings[0]))
	if err != nil {
		return nil, err
	}
	dim := len(null)

	examples := make([]domain.Example, len(embeddings))
	for i, emb := range embeddings {
		if len(emb) != dim {
			return nil, &domain.ShapeError{Want: dim, Got: len(emb)}
		}

		ctx := make([][]float32, b.size)
		for k := 0; k < b.size; k++ {
			src := i - (b.size - k)
			if src < 0 {
				ctx[k] = null
				continue
			}
			v := make([]float32, dim)
			copy(v, embeddings[src])
			ctx[k] = v
		}

		target := make([]float32, dim)
		copy(target, emb)

		examples[i] = domain.Example{Context: ctx, Target: target}
	}

	return examples, nil
}

// Null returns the shared null embedding, or nil if the dimension is
// not yet known.
func (b *Builder) Null() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.null
}

// nullFor establishes the run dimension on first use and returns the
// shared null embedding, rejecting sequences whose vectors disagree
// with an already-established dimension.
func (b *Builder) nullFor(dim int) ([]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dim == 0 {
		b.dim = dim
		b.null = make([]float32, dim)
	}
	if dim != b.dim {
		return nil, &domain.ShapeError{Want: b.dim, Got: dim}
	}
	return b.null, nil
}
