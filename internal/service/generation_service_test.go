package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textcards-be/internal/dto"
	"textcards-be/internal/repository/memory"
	"textcards-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
)

// fakeImageProvider records prompts and fails for segment prompts listed in
// failOn.
type fakeImageProvider struct {
	prompts []string
	failOn  map[string]bool
}

func (f *fakeImageProvider) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.failOn[prompt] {
		return "", errors.New("provider overloaded")
	}
	return "https://img.example.com/" + prompt, nil
}

func twoSegments() []dto.SegmentDTO {
	return []dto.SegmentDTO{
		{Id: 1, Content: "第一段内容", Summary: "第一段", ImagePrompt: "prompt-one"},
		{Id: 2, Content: "第二段内容", Summary: "第二段", ImagePrompt: "prompt-two"},
	}
}

func TestGenerateRejectsEmptySegments(t *testing.T) {
	svc := NewGenerationService(&fakeImageProvider{}, memory.NewBatchRepository(), nopLogger{})

	_, err := svc.Generate(context.Background(), &dto.GenerateImagesRequest{})

	require.Error(t, err)
	assert.True(t, pipeline.IsValidation(err))
	assert.Equal(t, "文本段落不能为空", err.Error())
}

func TestGenerateOneImagePerSegment(t *testing.T) {
	provider := &fakeImageProvider{}
	svc := NewGenerationService(provider, memory.NewBatchRepository(), nopLogger{})

	res, err := svc.Generate(context.Background(), &dto.GenerateImagesRequest{
		Segments:    twoSegments(),
		StylePrompt: "复古手绘",
		ImageSize:   "3:4",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, res.BatchId)
	require.Len(t, res.Images, 2)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, []string{"prompt-one", "prompt-two"}, provider.prompts)
	for i, img := range res.Images {
		assert.Equal(t, i+1, img.SegmentId)
		assert.Equal(t, pipeline.StatusCompleted, img.Status)
		assert.NotEmpty(t, img.ImageURL)
		assert.Equal(t, img.ImageURL, img.ThumbnailURL)
	}
}

func TestGenerateBuildsPromptWhenSegmentHasNone(t *testing.T) {
	provider := &fakeImageProvider{}
	svc := NewGenerationService(provider, memory.NewBatchRepository(), nopLogger{})

	_, err := svc.Generate(context.Background(), &dto.GenerateImagesRequest{
		Segments:    []dto.SegmentDTO{{Id: 1, Content: "深夜的城市街道"}},
		StylePrompt: "赛博朋克",
	})

	require.NoError(t, err)
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "赛博朋克")
	assert.Contains(t, provider.prompts[0], "深夜")
}

func TestGenerateProviderFailureYieldsPlaceholderWithFailedStatus(t *testing.T) {
	provider := &fakeImageProvider{failOn: map[string]bool{"prompt-two": true}}
	svc := NewGenerationService(provider, memory.NewBatchRepository(), nopLogger{})

	res, err := svc.Generate(context.Background(), &dto.GenerateImagesRequest{
		Segments: twoSegments(),
	})

	require.NoError(t, err)
	require.Len(t, res.Images, 2)
	assert.Equal(t, pipeline.StatusCompleted, res.Images[0].Status)
	assert.Equal(t, pipeline.StatusFailed, res.Images[1].Status)
	assert.Contains(t, res.Images[1].ImageURL, "picsum.photos")
}

func TestBatchStatusAfterGeneration(t *testing.T) {
	provider := &fakeImageProvider{failOn: map[string]bool{"prompt-two": true}}
	svc := NewGenerationService(provider, memory.NewBatchRepository(), nopLogger{})

	res, err := svc.Generate(context.Background(), &dto.GenerateImagesRequest{
		Segments: twoSegments(),
	})
	require.NoError(t, err)

	status, err := svc.BatchStatus(context.Background(), res.BatchId)
	require.NoError(t, err)
	assert.Equal(t, res.BatchId, status.BatchId)
	assert.Equal(t, "partial", status.Status)
	assert.Equal(t, 50, status.Progress)
	assert.Equal(t, 1, status.CompletedCount)
	assert.Equal(t, 2, status.TotalCount)
	require.Len(t, status.Images, 2)
}

func TestBatchStatusAllCompleted(t *testing.T) {
	svc := NewGenerationService(&fakeImageProvider{}, memory.NewBatchRepository(), nopLogger{})

	res, err := svc.Generate(context.Background(), &dto.GenerateImagesRequest{
		Segments: twoSegments(),
	})
	require.NoError(t, err)

	status, err := svc.BatchStatus(context.Background(), res.BatchId)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)
}

func TestBatchStatusUnknownBatch(t *testing.T) {
	svc := NewGenerationService(&fakeImageProvider{}, memory.NewBatchRepository(), nopLogger{})

	_, err := svc.BatchStatus(context.Background(), "no-such-batch")

	require.Error(t, err)
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
}
