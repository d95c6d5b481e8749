package ffmpeg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStride(t *testing.T) {
	cases := []struct {
		native float64
		fps    float64
		want   int
	}{
		{30, 8, 4},   // round(3.75) = 4
		{30, 30, 1},  // keep every frame
		{30, 60, 1},  // fps above native still keeps every frame
		{24, 8, 3},
		{29.97, 8, 4},
		{60, 8, 8},
		{25, 10, 3}, // round(2.5) = 3, round half away from zero
		{15, 8, 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Stride(tc.native, tc.fps), "Stride(%v, %v)", tc.native, tc.fps)
	}
}

// A native rate of 30 sampled at fps=8 gives stride 4, so source
// indices 0, 4, 8, 12, ... are the ones retained.
func TestStrideRetention(t *testing.T) {
	stride := Stride(30, 8)
	var kept []int
	for idx := 0; idx < 16; idx++ {
		if idx%stride == 0 {
			kept = append(kept, idx)
		}
	}
	assert.Equal(t, []int{0, 4, 8, 12}, kept)
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"garbage", 0},
		{"1/0", 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, parseFrameRate(tc.in), 1e-9, "parseFrameRate(%q)", tc.in)
	}
}

func TestParseProbeOutput(t *testing.T) {
	output := []byte(`{
		"format": {"duration": "12.5"},
		"streams": [
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "r_frame_rate": "30/1"}
		]
	}`)

	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)
	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, 30.0, info.FrameRate)
	assert.Equal(t, 12500*time.Millisecond, info.Duration)
}

func TestParseProbeOutput_NoVideoStream(t *testing.T) {
	output := []byte(`{"format": {"duration": "3"}, "streams": [{"codec_type": "audio", "codec_name": "mp3"}]}`)
	_, err := parseProbeOutput(output)
	assert.Error(t, err)
}

func TestParseProbeOutput_MissingFrameRate(t *testing.T) {
	output := []byte(`{"streams": [{"codec_type": "video", "codec_name": "h264", "width": 640, "height": 480}]}`)
	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatal(err)
	}
	// Undetectable rate surfaces as zero; Sample rejects it with a
	// SourceError before any decoding starts.
	assert.Equal(t, 0.0, info.FrameRate)
}
