package port

import "frameset/internal/domain"

// Embedder maps raster frames to fixed-length vectors.
type Embedder interface {
	// Embed generates embeddings for the given frames.
	// Returns a slice of vectors, one per input frame, all of
	// Dimension() length.
	Embed(frames []*domain.Frame) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
