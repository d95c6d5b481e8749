package port

import (
	"context"

	"frameset/internal/domain"
)

// FrameStream is a lazy, finite, non-restartable sequence of sampled
// frames in presentation order. Next returns (nil, nil) once the
// source is exhausted. Close releases the underlying decode resource
// and is safe to call at any point, including mid-stream.
type FrameStream interface {
	Next() (*domain.Frame, error)
	Close() error
}

// Sampler decodes video containers and yields time-subsampled frames.
type Sampler interface {
	// Probe reads container metadata without decoding frames.
	Probe(ctx context.Context, path string) (domain.VideoInfo, error)

	// Sample opens path for decoding and retains frames at the given
	// target rate in frames per second.
	Sample(ctx context.Context, path string, fps float64) (FrameStream, error)
}
