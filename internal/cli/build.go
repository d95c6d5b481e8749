package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"frameset/config"
	"frameset/internal/adapter/embedding"
	"frameset/internal/adapter/ffmpeg"
	"frameset/internal/adapter/fs"
	"frameset/internal/adapter/store"
	"frameset/internal/dataset"
	"frameset/internal/logging"
	"frameset/internal/port"
	"frameset/internal/usecase"
)

var (
	buildFPS     float64
	buildWindow  int
	buildWorkers int
)

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Build the training corpus from a video directory",
	Long: `Sample, embed, and window every video in the directory, then report
corpus statistics. With caching enabled the per-video embedding
sequences are persisted under .frameset/ so unchanged videos are not
re-embedded on the next build.

Examples:
  frameset build ./videos
  frameset build ./videos --fps 4 --window 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Float64Var(&buildFPS, "fps", 0, "frames per second to retain (overrides config)")
	buildCmd.Flags().IntVar(&buildWindow, "window", 0, "history window size (overrides config)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "parallel video workers (overrides config)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	dir, err := corpusPath(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	if buildFPS > 0 {
		cfg.Sampling.FPS = buildFPS
	}
	if buildWindow > 0 {
		cfg.Window.Size = buildWindow
	}
	if buildWorkers > 0 {
		cfg.Build.Workers = buildWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.WithComponent("cli")

	sampler, err := ffmpeg.NewDecoder(logger)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	if closer, ok := embedder.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var cache port.EmbeddingCache
	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.Path
		if cachePath == "" {
			if err := config.EnsureWorkDir(dir); err != nil {
				return fmt.Errorf("failed to create .frameset directory: %w", err)
			}
			cachePath = config.CacheDBPath(dir)
		}
		cache, err = store.NewBoltCache(cachePath, embedder.ModelName(), embedder.Dimension())
		if err != nil {
			return fmt.Errorf("failed to open embedding cache: %w", err)
		}
		defer cache.Close()
	}

	index := fs.NewIndex(cfg.Corpus.Includes, cfg.Corpus.Excludes)
	buildUC := usecase.NewBuildUseCase(index, sampler, embedder, cache, cfg, logger)

	fmt.Printf("Building corpus from %s (fps=%v, window=%d)...\n", dir, cfg.Sampling.FPS, cfg.Window.Size)

	var bar *progressbar.ProgressBar
	progress := func(done, total int, path string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
		bar.Describe(fmt.Sprintf("[cyan]Embedding[reset] %s", filepath.Base(path)))
	}

	result, err := buildUC.Build(context.Background(), dir, progress)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	stats := result.Dataset.Stats()
	fmt.Printf("\nCorpus build complete:\n")
	fmt.Printf("  Videos processed: %d\n", result.VideosProcessed)
	fmt.Printf("  Videos failed:    %d\n", result.VideosFailed)
	fmt.Printf("  Frames sampled:   %d\n", result.FramesSampled)
	fmt.Printf("  Examples:         %d\n", stats.Examples)
	fmt.Printf("  Dimension:        %d\n", stats.Dimension)
	if cache != nil {
		fmt.Printf("  Cache hits:       %d\n", result.CacheHits)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	// Demonstrate the consumption path the trainer will use.
	batcher := dataset.NewBatcher(result.Dataset, cfg.Loader.BatchSize, cfg.Loader.Shuffle, cfg.Loader.Seed)
	fmt.Printf("\nLoader: %d batches of up to %d (shuffle=%v, seed=%d)\n",
		batcher.Batches(), cfg.Loader.BatchSize, cfg.Loader.Shuffle, cfg.Loader.Seed)

	return nil
}

// newEmbedder constructs the configured embedding adapter.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "jina":
		return embedding.NewJinaEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "openai":
		baseURL := cfg.Embedding.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, baseURL, cfg.Embedding.Dimension)
	case "onnx":
		return embedding.NewONNXEmbedder(cfg.Embedding.ModelPath, cfg.Embedding.LibraryPath, cfg.Embedding.Dimension, cfg.Embedding.InputSize)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// corpusPath resolves the positional directory argument.
func corpusPath(args []string) (string, error) {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", path)
	}
	return path, nil
}
