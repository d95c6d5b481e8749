package domain

import (
	"image"
	"time"
)

// Frame is one decoded raster image in RGB order, 3 bytes per pixel.
// Frames are ephemeral: produced by a sampler, consumed by an embedder,
// never retained in the dataset.
type Frame struct {
	// Index is the position in the sampled (post-stride) sequence.
	Index int
	// SourceIndex is the position in the decoded source stream.
	SourceIndex int
	Width       int
	Height      int
	Pix         []byte // len == Width*Height*3
}

// Image converts the raw RGB pixels into an image.RGBA for encoders
// and resizers that work on image.Image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i := 0; i < f.Width*f.Height; i++ {
		img.Pix[i*4+0] = f.Pix[i*3+0]
		img.Pix[i*4+1] = f.Pix[i*3+1]
		img.Pix[i*4+2] = f.Pix[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// VideoInfo holds probed container metadata.
type VideoInfo struct {
	Path      string
	Width     int
	Height    int
	FrameRate float64 // native rate, frames per second
	Duration  time.Duration
	Codec     string
}

// Example is one supervised training pair: the embeddings of the
// window-size frames immediately preceding the target frame (oldest
// first), and the embedding of the target frame itself. Context slots
// before the start of a video hold the null embedding.
type Example struct {
	Context [][]float32
	Target  []float32
}

// Stats summarize an assembled corpus.
type Stats struct {
	Videos    int
	Frames    int
	Examples  int
	Dimension int
}
