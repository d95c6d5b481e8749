package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"frameset/config"
	"frameset/internal/adapter/ffmpeg"
	"frameset/internal/adapter/fs"
	"frameset/internal/dataset"
	"frameset/internal/domain"
	"frameset/internal/port"
	"frameset/internal/window"
)

// BuildUseCase assembles the full training corpus: it enumerates the
// videos of a directory, samples and embeds each one, and windows the
// embedding sequences into examples.
type BuildUseCase struct {
	index    *fs.Index
	sampler  port.Sampler
	embedder port.Embedder
	cache    port.EmbeddingCache // nil disables caching
	cfg      *config.Config
	logger   zerolog.Logger

	// Embedding model handles are not assumed reentrant; all Embed
	// calls are serialized even when videos decode in parallel.
	embedMu sync.Mutex
}

// NewBuildUseCase creates a build use case. cache may be nil.
func NewBuildUseCase(
	index *fs.Index,
	sampler port.Sampler,
	embedder port.Embedder,
	cache port.EmbeddingCache,
	cfg *config.Config,
	logger zerolog.Logger,
) *BuildUseCase {
	return &BuildUseCase{
		index:    index,
		sampler:  sampler,
		embedder: embedder,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.With().Str("component", "build").Logger(),
	}
}

// BuildResult contains the results of a corpus build.
type BuildResult struct {
	Dataset         *dataset.Dataset
	VideosProcessed int
	VideosFailed    int
	FramesSampled   int
	CacheHits       int
	Errors          []string
}

// videoResult carries one video's embeddings out of the sampling
// stage, before windowing.
type videoResult struct {
	path       string
	embeddings [][]float32
	cached     bool
	err        error
}

// Build runs the full pipeline over dir. Behavior on a per-video
// failure follows build.on_error: "abort" stops the whole build,
// "skip" drops that video's contribution and records a warning in the
// result. progress may be nil.
func (u *BuildUseCase) Build(ctx context.Context, dir string, progress func(done, total int, path string)) (*BuildResult, error) {
	paths, err := u.index.List(dir)
	if err != nil {
		return nil, err
	}
	// Enumeration order is filesystem-defined; sort so cross-video
	// concatenation order is reproducible across runs and platforms.
	sort.Strings(paths)

	results := make([]videoResult, len(paths))
	if u.cfg.Build.Workers > 1 {
		u.runParallel(ctx, paths, results, progress)
	} else {
		for i, path := range paths {
			results[i] = u.processVideo(ctx, path)
			if progress != nil {
				progress(i+1, len(paths), path)
			}
		}
	}

	builder := window.NewBuilder(u.cfg.Window.Size)
	ds := dataset.New()
	result := &BuildResult{Dataset: ds}

	for _, r := range results {
		if r.err != nil {
			if u.cfg.Build.OnError == "skip" {
				u.logger.Warn().Str("path", r.path).Err(r.err).Msg("skipping video")
				result.VideosFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.path, r.err))
				continue
			}
			return nil, fmt.Errorf("failed to process %s: %w", r.path, r.err)
		}

		examples, err := builder.Build(r.embeddings)
		if err != nil {
			// A shape violation is a corrupted run, never skippable.
			return nil, fmt.Errorf("failed to window %s: %w", r.path, err)
		}

		ds.Append(r.path, examples)
		result.VideosProcessed++
		result.FramesSampled += len(r.embeddings)
		if r.cached {
			result.CacheHits++
		}
	}

	u.logger.Info().
		Int("videos", result.VideosProcessed).
		Int("failed", result.VideosFailed).
		Int("examples", ds.Len()).
		Int("dimension", ds.Dimension()).
		Msg("corpus build complete")

	return result, nil
}

// runParallel decodes videos concurrently. Each worker owns its own
// decode process; results land in their slot so assembly order stays
// deterministic.
func (u *BuildUseCase) runParallel(ctx context.Context, paths []string, results []videoResult, progress func(done, total int, path string)) {
	jobs := make(chan int)
	var done int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < u.cfg.Build.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = u.processVideo(ctx, paths[i])
				if progress != nil {
					mu.Lock()
					done++
					progress(done, len(paths), paths[i])
					mu.Unlock()
				}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// processVideo samples and embeds a single video, consulting the
// cache first when one is configured.
func (u *BuildUseCase) processVideo(ctx context.Context, path string) videoResult {
	result := videoResult{path: path}

	var key port.CacheKey
	if u.cache != nil {
		info, err := os.Stat(path)
		if err != nil {
			result.err = &domain.SourceError{Path: path, Err: err}
			return result
		}
		probed, err := u.sampler.Probe(ctx, path)
		if err != nil {
			result.err = err
			return result
		}
		if probed.FrameRate <= 0 {
			result.err = &domain.SourceError{Path: path, Err: errors.New("native frame rate not detectable")}
			return result
		}
		key = port.CacheKey{
			Path:    path,
			ModTime: info.ModTime().Unix(),
			Stride:  ffmpeg.Stride(probed.FrameRate, u.cfg.Sampling.FPS),
		}

		vectors, ok, err := u.cache.Get(key)
		if err != nil {
			result.err = err
			return result
		}
		if ok {
			u.logger.Debug().Str("path", path).Int("frames", len(vectors)).Msg("cache hit")
			result.embeddings = vectors
			result.cached = true
			return result
		}
	}

	embeddings, err := u.sampleAndEmbed(ctx, path)
	if err != nil {
		result.err = err
		return result
	}
	result.embeddings = embeddings

	if u.cache != nil {
		if err := u.cache.Put(key, embeddings); err != nil {
			// Cache write failure degrades to a re-embed next run.
			u.logger.Warn().Str("path", path).Err(err).Msg("cache write failed")
		}
	}
	return result
}

// sampleAndEmbed drains one video's frame stream, embedding frames in
// batches as they arrive so at most one batch of frames is resident.
func (u *BuildUseCase) sampleAndEmbed(ctx context.Context, path string) ([][]float32, error) {
	stream, err := u.sampler.Sample(ctx, path, u.cfg.Sampling.FPS)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var embeddings [][]float32
	batch := make([]*domain.Frame, 0, u.cfg.Embedding.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		u.embedMu.Lock()
		vectors, err := u.embedder.Embed(batch)
		u.embedMu.Unlock()
		if err != nil {
			return fmt.Errorf("embed %s: %w", path, err)
		}
		embeddings = append(embeddings, vectors...)
		batch = batch[:0]
		return nil
	}

	for {
		frame, err := stream.Next()
		if err != nil {
			return nil, err
		}
		if frame == nil {
			break
		}
		batch = append(batch, frame)
		if len(batch) == u.cfg.Embedding.BatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return embeddings, nil
}
