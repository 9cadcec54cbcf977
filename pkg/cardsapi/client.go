// Package cardsapi is the HTTP client for the text-to-cards service: the
// analyze-text and generate-images endpoints consumed by the card pipeline.
package cardsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"textcards-be/pkg/pipeline"
)

const maxTextRunes = 10000

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// The client satisfies both pipeline contracts.
var _ pipeline.Analyzer = &Client{}
var _ pipeline.Generator = &Client{}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// Generation can take tens of seconds per segment; bounded so a
			// hanging service cannot pin the session forever.
			Timeout: 120 * time.Second,
		},
	}
}

// --- Wire shapes (matching the service contract) ---

type segmentPayload struct {
	Id          int    `json:"id"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	ImagePrompt string `json:"image_prompt"`
}

type analyzeTextRequest struct {
	Text        string `json:"text"`
	StylePrompt string `json:"style_prompt"`
	MaxSegments int    `json:"max_segments"`
}

type analyzeTextResponse struct {
	Segments      []segmentPayload `json:"segments"`
	TotalCount    int              `json:"total_count"`
	EstimatedTime int              `json:"estimated_time"`
}

type generateImagesRequest struct {
	Segments    []segmentPayload `json:"segments"`
	StylePrompt string           `json:"style_prompt"`
	ImageSize   string           `json:"image_size"`
}

// imagePayload keeps every field optional: the service does not guarantee the
// full record shape, and some deployments send "url" instead of "image_url".
type imagePayload struct {
	SegmentId *int   `json:"segment_id"`
	ImageURL  string `json:"image_url"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	Prompt    string `json:"prompt"`
}

type generateImagesResponse struct {
	BatchId    string         `json:"batch_id"`
	Images     []imagePayload `json:"images"`
	TotalCount int            `json:"total_count"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// --- Contract implementation ---

// AnalyzeText validates the request locally, then calls POST /api/analyze-text.
// Blank or oversized text is rejected before any network traffic.
func (c *Client) AnalyzeText(ctx context.Context, req pipeline.AnalysisRequest) (*pipeline.AnalysisResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &pipeline.ValidationError{Message: "文本内容不能为空"}
	}
	if utf8.RuneCountInString(req.Text) > maxTextRunes {
		return nil, &pipeline.ValidationError{Message: "文本长度不能超过10000字"}
	}

	payload := analyzeTextRequest{
		Text:        req.Text,
		StylePrompt: req.StylePrompt,
		MaxSegments: req.MaxSegments,
	}

	var resp analyzeTextResponse
	if err := c.post(ctx, "/api/analyze-text", payload, &resp, "文本分析失败"); err != nil {
		return nil, err
	}

	segments := make([]pipeline.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = pipeline.Segment{
			Id:          seg.Id,
			Content:     seg.Content,
			Summary:     seg.Summary,
			ImagePrompt: seg.ImagePrompt,
		}
	}
	return &pipeline.AnalysisResult{Segments: segments}, nil
}

// GenerateImages calls POST /api/generate-images with the live segment
// snapshot. An empty snapshot is rejected locally.
func (c *Client) GenerateImages(ctx context.Context, req pipeline.GenerationRequest) (*pipeline.GenerationResult, error) {
	if len(req.Segments) == 0 {
		return nil, &pipeline.ValidationError{Message: "文本段落不能为空"}
	}

	payload := generateImagesRequest{
		Segments:    make([]segmentPayload, len(req.Segments)),
		StylePrompt: req.StylePrompt,
		ImageSize:   req.ImageSize,
	}
	for i, seg := range req.Segments {
		payload.Segments[i] = segmentPayload{
			Id:          seg.Id,
			Content:     seg.Content,
			Summary:     seg.Summary,
			ImagePrompt: seg.ImagePrompt,
		}
	}

	var resp generateImagesResponse
	if err := c.post(ctx, "/api/generate-images", payload, &resp, "图片生成失败"); err != nil {
		return nil, err
	}

	images := make([]pipeline.RawImage, len(resp.Images))
	for i, img := range resp.Images {
		url := img.ImageURL
		if url == "" {
			url = img.URL
		}
		images[i] = pipeline.RawImage{
			SegmentId: img.SegmentId,
			ImageURL:  url,
			Status:    img.Status,
			Prompt:    img.Prompt,
		}
	}
	return &pipeline.GenerationResult{BatchId: resp.BatchId, Images: images}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any, fallback string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &pipeline.RemoteError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &pipeline.RemoteError{Message: fallback, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Non-2xx responses may carry a human-readable detail; prefer it.
		var errResp errorResponse
		message := fallback
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail != "" {
			message = errResp.Detail
		}
		return &pipeline.RemoteError{
			Message: message,
			Err:     fmt.Errorf("%s: status %d", path, resp.StatusCode),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &pipeline.RemoteError{Message: fallback, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}
