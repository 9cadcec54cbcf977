package cardsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"textcards-be/pkg/pipeline"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTextSuccess(t *testing.T) {
	var gotPath string
	var gotBody analyzeTextRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(analyzeTextResponse{
			Segments: []segmentPayload{
				{Id: 1, Content: "春天来了", Summary: "春天来了", ImagePrompt: "Depicts: 春天来了"},
				{Id: 2, Content: "夏天也不远了", Summary: "夏天也不远了", ImagePrompt: "Depicts: 夏天也不远了"},
			},
			TotalCount:    2,
			EstimatedTime: 60,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.AnalyzeText(context.Background(), pipeline.AnalysisRequest{
		Text:        "春天来了。夏天也不远了。",
		StylePrompt: "现代简约风格",
		MaxSegments: 8,
	})

	assert.NoError(t, err)
	assert.Equal(t, "/api/analyze-text", gotPath)
	assert.Equal(t, 8, gotBody.MaxSegments)
	assert.Len(t, result.Segments, 2)
	assert.Equal(t, 1, result.Segments[0].Id)
	assert.Equal(t, "Depicts: 春天来了", result.Segments[0].ImagePrompt)
}

func TestAnalyzeTextBlankRejectedWithoutRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AnalyzeText(context.Background(), pipeline.AnalysisRequest{Text: "  \n "})

	assert.True(t, pipeline.IsValidation(err))
	assert.Equal(t, 0, calls)
}

func TestAnalyzeTextOversizedRejectedWithoutRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AnalyzeText(context.Background(), pipeline.AnalysisRequest{
		Text: strings.Repeat("字", 10001),
	})

	assert.True(t, pipeline.IsValidation(err))
	assert.Equal(t, 0, calls)
}

func TestAnalyzeTextServerDetailPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Detail: "文本分析失败: 模型不可用"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AnalyzeText(context.Background(), pipeline.AnalysisRequest{Text: "春天来了"})

	assert.True(t, pipeline.IsRemote(err))
	assert.Equal(t, "文本分析失败: 模型不可用", err.Error())
}

func TestAnalyzeTextMissingDetailFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AnalyzeText(context.Background(), pipeline.AnalysisRequest{Text: "春天来了"})

	assert.True(t, pipeline.IsRemote(err))
	assert.Equal(t, "文本分析失败", err.Error())
}

func TestGenerateImagesSuccess(t *testing.T) {
	var gotBody generateImagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		segId := 1
		_ = json.NewEncoder(w).Encode(generateImagesResponse{
			BatchId: "batch-9",
			Images: []imagePayload{
				{SegmentId: &segId, ImageURL: "https://img.example.com/1.png", Status: "completed", Prompt: "p1"},
				{URL: "https://img.example.com/2.png"},
			},
			TotalCount: 2,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.GenerateImages(context.Background(), pipeline.GenerationRequest{
		Segments: []pipeline.Segment{
			{Id: 1, Content: "a", Summary: "a", ImagePrompt: "p1"},
			{Id: 2, Content: "b", Summary: "b", ImagePrompt: "p2"},
		},
		StylePrompt: "现代简约风格",
		ImageSize:   "3:4",
	})

	assert.NoError(t, err)
	assert.Equal(t, "3:4", gotBody.ImageSize)
	assert.Len(t, gotBody.Segments, 2)
	assert.Equal(t, "batch-9", result.BatchId)

	// "url" is accepted as an alias for "image_url".
	assert.Equal(t, "https://img.example.com/2.png", result.Images[1].ImageURL)
	assert.Nil(t, result.Images[1].SegmentId)
	assert.Empty(t, result.Images[1].Status)
}

func TestGenerateImagesEmptySnapshotRejected(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GenerateImages(context.Background(), pipeline.GenerationRequest{})

	assert.True(t, pipeline.IsValidation(err))
	assert.Equal(t, 0, calls)
}
