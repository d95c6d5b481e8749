// Package embedding provides frame-embedding model adapters.
package embedding

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"time"

	"frameset/internal/domain"
)

// HTTPEmbedder calls an OpenAI-compatible multimodal embeddings API
// (Jina CLIP shape): frames are sent as base64 JPEG images.
type HTTPEmbedder struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	client    *http.Client
}

type imageInput struct {
	Image string `json:"image"`
}

type embeddingRequest struct {
	Input []imageInput `json:"input"`
	Model string       `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewJinaEmbedder(apiKeyEnv, model string) (*HTTPEmbedder, error) {
	dimension := 768
	switch model {
	case "jina-clip-v1":
		dimension = 768
	case "jina-clip-v2":
		dimension = 1024
	}
	return NewOpenAICompatibleEmbedder(apiKeyEnv, model, "https://api.jina.ai/v1", dimension)
}

func NewOpenAICompatibleEmbedder(apiKeyEnv, model, baseURL string, dimension int) (*HTTPEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	return &HTTPEmbedder{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		dimension: dimension,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (e *HTTPEmbedder) Embed(frames []*domain.Frame) ([][]float32, error) {
	if len(frames) == 0 {
		return nil, nil
	}

	const maxBatch = 32
	var all [][]float32

	for i := 0; i < len(frames); i += maxBatch {
		end := i + maxBatch
		if end > len(frames) {
			end = len(frames)
		}

		embeddings, err := e.embedBatch(frames[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

func (e *HTTPEmbedder) embedBatch(frames []*domain.Frame) ([][]float32, error) {
	inputs := make([]imageInput, len(frames))
	for i, f := range frames {
		encoded, err := encodeFrameJPEG(f)
		if err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", f.Index, err)
		}
		inputs[i] = imageInput{Image: encoded}
	}

	reqBody := embeddingRequest{
		Input: inputs,
		Model: e.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", e.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	embeddings := make([][]float32, len(frames))
	for _, data := range embResp.Data {
		if data.Index < len(embeddings) {
			embeddings[data.Index] = data.Embedding
		}
	}

	for i, emb := range embeddings {
		if len(emb) != e.dimension {
			return nil, fmt.Errorf("frame %d: %w", frames[i].Index, &domain.ShapeError{Want: e.dimension, Got: len(emb)})
		}
	}

	return embeddings, nil
}

func (e *HTTPEmbedder) Dimension() int {
	return e.dimension
}

func (e *HTTPEmbedder) ModelName() string {
	return e.model
}

// encodeFrameJPEG renders a frame as base64 JPEG for the wire.
func encodeFrameJPEG(f *domain.Frame) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image(), &jpeg.Options{Quality: 90}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
