package embedding

import "frameset/internal/domain"

// MockEmbedder returns deterministic vectors derived from frame
// pixels. It stands in for a real model in tests and dry runs.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(frames []*domain.Frame) ([][]float32, error) {
	embeddings := make([][]float32, len(frames))
	for i, f := range frames {
		v := make([]float32, e.dimension)
		for j, p := range f.Pix {
			v[j%e.dimension] += float32(p) / 255.0
		}
		// Frame position folds in so distinct frames with identical
		// pixels still embed distinctly.
		if e.dimension > 0 {
			v[0] += float32(f.Index)
		}
		embeddings[i] = v
	}
	return embeddings, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
