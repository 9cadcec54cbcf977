package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIProvider speaks the OpenAI images API. Volcano Ark's SeeDream models
// expose the same surface, so one provider covers both.
type OpenAIProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Size    string
	Client  *http.Client
}

var _ Provider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, model, size string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}
	if model == "" {
		model = "doubao-seedream-4-0-250828"
	}
	if size == "" {
		size = "768x1024" // 3:4 portrait
	}
	return &OpenAIProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Size:    size,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	reqPayload := imageRequest{
		Model:          p.Model,
		Prompt:         prompt,
		N:              1,
		Size:           p.Size,
		ResponseFormat: "url",
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image generation error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var imgResp imageResponse
	if err := json.Unmarshal(bodyBytes, &imgResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if imgResp.Error != nil {
		return "", fmt.Errorf("image generation error: %s", imgResp.Error.Message)
	}
	if len(imgResp.Data) == 0 {
		return "", fmt.Errorf("image generation returned no data")
	}

	return imgResp.Data[0].URL, nil
}
