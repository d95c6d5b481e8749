// Package ffmpeg decodes video files by shelling out to ffmpeg and
// ffprobe, which must be on PATH.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"frameset/internal/domain"
	"frameset/internal/port"
)

// Decoder samples frames from video containers. It implements
// port.Sampler.
type Decoder struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
}

// NewDecoder locates the ffmpeg and ffprobe binaries.
func NewDecoder(logger zerolog.Logger) (*Decoder, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Decoder{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}, nil
}

// Stride converts a native frame rate and a target sampling rate into
// a retention stride: every stride-th decoded frame is kept. Always at
// least 1, so fps above the native rate keeps every frame.
func Stride(native, fps float64) int {
	stride := int(math.Round(native / fps))
	if stride < 1 {
		stride = 1
	}
	return stride
}

// Sample opens path for sequential decoding and retains frames at the
// given target rate. The returned stream must be closed by the caller;
// closing kills the decoder process if it is still running.
func (d *Decoder) Sample(ctx context.Context, path string, fps float64) (port.FrameStream, error) {
	info, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.FrameRate <= 0 {
		return nil, &domain.SourceError{Path: path, Err: errors.New("native frame rate not detectable")}
	}

	stride := Stride(info.FrameRate, fps)

	// ffmpeg converts from the source's native pixel format to packed
	// RGB; frames arrive on stdout as Width*Height*3 byte planes.
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &domain.SourceError{Path: path, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &domain.SourceError{Path: path, Err: fmt.Errorf("start ffmpeg: %w", err)}
	}

	d.logger.Debug().
		Str("path", path).
		Float64("native_fps", info.FrameRate).
		Int("stride", stride).
		Msg("decoding video")

	return &stream{
		cmd:       cmd,
		stdout:    stdout,
		stderr:    &stderr,
		path:      path,
		width:     info.Width,
		height:    info.Height,
		frameSize: info.Width * info.Height * 3,
		stride:    stride,
	}, nil
}

// stream reads raw RGB frames from a running ffmpeg process and drops
// all but every stride-th one.
type stream struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    *bytes.Buffer
	path      string
	width     int
	height    int
	frameSize int
	stride    int

	srcIndex int // next frame index in the decoded stream
	kept     int // frames emitted so far
	done     bool
	closed   bool
}

func (s *stream) Next() (*domain.Frame, error) {
	if s.done || s.closed {
		return nil, nil
	}

	buf := make([]byte, s.frameSize)
	for {
		_, err := io.ReadFull(s.stdout, buf)
		if err == io.EOF {
			// Clean end of stream; a zero-frame video lands here on
			// the first read.
			return nil, s.finish()
		}
		if err != nil {
			// Truncated frame mid-stream means the decode failed.
			s.finish()
			return nil, &domain.SourceError{Path: s.path, Err: fmt.Errorf("decode: %w%s", err, s.stderrTail())}
		}

		idx := s.srcIndex
		s.srcIndex++
		if idx%s.stride != 0 {
			continue
		}

		frame := &domain.Frame{
			Index:       s.kept,
			SourceIndex: idx,
			Width:       s.width,
			Height:      s.height,
			Pix:         buf,
		}
		s.kept++
		return frame, nil
	}
}

// finish waits for the decoder after a clean EOF and surfaces any exit
// failure as a SourceError.
func (s *stream) finish() error {
	s.done = true
	if err := s.cmd.Wait(); err != nil {
		return &domain.SourceError{Path: s.path, Err: fmt.Errorf("ffmpeg: %w%s", err, s.stderrTail())}
	}
	return nil
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.done {
		return nil
	}
	// Early termination: stop the decoder and reap it.
	s.stdout.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	s.done = true
	return nil
}

func (s *stream) stderrTail() string {
	msg := strings.TrimSpace(s.stderr.String())
	if msg == "" {
		return ""
	}
	const max = 300
	if len(msg) > max {
		msg = msg[len(msg)-max:]
	}
	return ": " + msg
}
