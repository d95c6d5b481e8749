package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"frameset/internal/adapter/fs"
)

var lsCmd = &cobra.Command{
	Use:   "ls [dir]",
	Short: "List the video files a build would pick up",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	dir, err := corpusPath(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	index := fs.NewIndex(cfg.Corpus.Includes, cfg.Corpus.Excludes)

	paths, err := index.List(dir)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		fmt.Printf("No video files in %s\n", dir)
		return nil
	}

	for _, p := range paths {
		fmt.Println(p)
	}
	fmt.Printf("\n%d video(s)\n", len(paths))
	return nil
}
