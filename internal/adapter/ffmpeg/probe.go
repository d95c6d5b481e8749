package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"frameset/internal/domain"
)

// Probe reads container metadata with ffprobe without decoding frames.
func (d *Decoder) Probe(ctx context.Context, path string) (domain.VideoInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	cmd := exec.CommandContext(ctx, d.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return domain.VideoInfo{}, &domain.SourceError{Path: path, Err: fmt.Errorf("ffprobe: %w", err)}
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return domain.VideoInfo{}, &domain.SourceError{Path: path, Err: err}
	}
	info.Path = path
	return info, nil
}

// probeResult matches ffprobe JSON output structure.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func parseProbeOutput(output []byte) (domain.VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return domain.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var info domain.VideoInfo
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		info.Codec = stream.CodecName
		info.FrameRate = parseFrameRate(stream.RFrameRate)
		break
	}

	if info.Width <= 0 || info.Height <= 0 {
		return domain.VideoInfo{}, errors.New("no video stream found")
	}
	return info, nil
}

// parseFrameRate parses ffprobe's rational rate form, e.g. "30/1" or
// "30000/1001". Returns 0 when the rate is absent or malformed.
func parseFrameRate(s string) float64 {
	if s == "" {
		return 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
