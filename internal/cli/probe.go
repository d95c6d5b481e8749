package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"frameset/internal/adapter/ffmpeg"
	"frameset/internal/logging"
)

var probeFPS float64

var probeCmd = &cobra.Command{
	Use:   "probe <video>",
	Short: "Show a video's metadata and the sampling plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().Float64Var(&probeFPS, "fps", 0, "frames per second to retain (overrides config)")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	cfg := GetConfig()
	fps := cfg.Sampling.FPS
	if probeFPS > 0 {
		fps = probeFPS
	}

	decoder, err := ffmpeg.NewDecoder(logging.WithComponent("cli"))
	if err != nil {
		return err
	}

	info, err := decoder.Probe(context.Background(), path)
	if err != nil {
		return err
	}

	fmt.Printf("Video:      %s\n", info.Path)
	fmt.Printf("Codec:      %s\n", info.Codec)
	fmt.Printf("Resolution: %dx%d\n", info.Width, info.Height)
	fmt.Printf("Duration:   %s\n", info.Duration)

	if info.FrameRate <= 0 {
		fmt.Println("Frame rate: not detectable (this video would fail a build)")
		return nil
	}

	stride := ffmpeg.Stride(info.FrameRate, fps)
	estimated := int(info.Duration.Seconds()*info.FrameRate) / stride
	fmt.Printf("Frame rate: %.3f fps\n", info.FrameRate)
	fmt.Printf("Sampling:   fps=%v -> stride %d (~%d retained frames)\n", fps, stride, estimated)

	return nil
}
