package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"frameset/config"
	"frameset/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "frameset",
	Short: "Build frame-embedding training datasets from video directories",
	Long: `frameset samples frames from videos at a controlled rate, embeds each
frame with a pretrained image model, and assembles sliding-window
(history -> next frame) training examples for a sequence model.

Example usage:
  frameset ls ./videos              # Show which files a build would pick up
  frameset probe ./videos/a.mp4     # Show container metadata and sampling plan
  frameset build ./videos           # Build the corpus and report statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logging.Init(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./frameset.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
