package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"textcards-be/internal/dto"
	"textcards-be/internal/entity"
	"textcards-be/internal/pkg/logger"
	"textcards-be/internal/repository/contract"
	"textcards-be/pkg/imagegen"
	"textcards-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
)

const defaultImageSize = "3:4"

type IGenerationService interface {
	Generate(ctx context.Context, req *dto.GenerateImagesRequest) (*dto.GenerateImagesResponse, error)
	BatchStatus(ctx context.Context, batchId string) (*dto.BatchStatusResponse, error)
}

type generationService struct {
	provider imagegen.Provider
	fallback imagegen.Provider
	batches  contract.IBatchRepository
	log      logger.ILogger
}

func NewGenerationService(provider imagegen.Provider, batches contract.IBatchRepository, log logger.ILogger) IGenerationService {
	return &generationService{
		provider: provider,
		fallback: imagegen.NewPlaceholderProvider(),
		batches:  batches,
		log:      log,
	}
}

// Generate produces one image per segment. A provider failure never fails the
// batch: the failing segment gets a placeholder image with status "failed" so
// the batch always comes back complete.
func (s *generationService) Generate(ctx context.Context, req *dto.GenerateImagesRequest) (*dto.GenerateImagesResponse, error) {
	if len(req.Segments) == 0 {
		return nil, &pipeline.ValidationError{Message: "文本段落不能为空"}
	}

	stylePrompt := req.StylePrompt
	if stylePrompt == "" {
		stylePrompt = defaultStylePrompt
	}
	imageSize := req.ImageSize
	if imageSize == "" {
		imageSize = defaultImageSize
	}

	batchId := uuid.NewString()
	images := make([]dto.GeneratedImageDTO, 0, len(req.Segments))
	for _, segment := range req.Segments {
		prompt := imagePromptFor(segment, stylePrompt)

		url, err := s.provider.GenerateImage(ctx, prompt)
		status := pipeline.StatusCompleted
		if err != nil {
			s.log.Warn("generation", "image provider failed, using placeholder", map[string]interface{}{
				"batch_id":   batchId,
				"segment_id": segment.Id,
				"error":      err.Error(),
			})
			url, _ = s.fallback.GenerateImage(ctx, prompt)
			status = pipeline.StatusFailed
		}

		images = append(images, dto.GeneratedImageDTO{
			SegmentId:    segment.Id,
			ImageURL:     url,
			ThumbnailURL: url,
			Status:       status,
			Prompt:       prompt,
		})
	}

	s.persistBatch(batchId, req, images)

	return &dto.GenerateImagesResponse{
		BatchId:    batchId,
		Images:     images,
		TotalCount: len(images),
	}, nil
}

func (s *generationService) BatchStatus(ctx context.Context, batchId string) (*dto.BatchStatusResponse, error) {
	batch, err := s.batches.FindById(ctx, batchId)
	if err != nil {
		return nil, fmt.Errorf("find batch: %w", err)
	}
	if batch == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "批次不存在")
	}

	completed := 0
	images := make([]dto.GeneratedImageDTO, 0, len(batch.Images))
	for _, img := range batch.Images {
		if img.Status == pipeline.StatusCompleted {
			completed++
		}
		images = append(images, dto.GeneratedImageDTO{
			SegmentId:    img.SegmentId,
			ImageURL:     img.ImageURL,
			ThumbnailURL: img.ThumbnailURL,
			Status:       img.Status,
			Prompt:       img.Prompt,
		})
	}

	status := pipeline.StatusCompleted
	progress := 100
	if total := len(batch.Images); total > 0 {
		progress = completed * 100 / total
		if completed < total {
			status = "partial"
		}
	}

	return &dto.BatchStatusResponse{
		BatchId:        batch.Id,
		Status:         status,
		Progress:       progress,
		CompletedCount: completed,
		TotalCount:     len(batch.Images),
		Images:         images,
	}, nil
}

// persistBatch stores the finished batch for later status lookups. Storage
// trouble is logged and swallowed; the caller already has the images.
func (s *generationService) persistBatch(batchId string, req *dto.GenerateImagesRequest, images []dto.GeneratedImageDTO) {
	snapshot, err := json.Marshal(req.Segments)
	if err != nil {
		snapshot = []byte("[]")
	}

	batch := &entity.Batch{
		Id:               batchId,
		StylePrompt:      req.StylePrompt,
		ImageSize:        req.ImageSize,
		SegmentsSnapshot: datatypes.JSON(snapshot),
		Images:           make([]entity.GeneratedImage, 0, len(images)),
	}
	for _, img := range images {
		batch.Images = append(batch.Images, entity.GeneratedImage{
			BatchId:      batchId,
			SegmentId:    img.SegmentId,
			ImageURL:     img.ImageURL,
			ThumbnailURL: img.ThumbnailURL,
			Status:       img.Status,
			Prompt:       img.Prompt,
		})
	}

	if err := s.batches.Save(context.Background(), batch); err != nil {
		s.log.Warn("generation", "failed to persist batch", map[string]interface{}{
			"batch_id": batchId,
			"error":    err.Error(),
		})
	}
}

// imagePromptFor picks the segment's edited prompt when present, otherwise
// builds one from the style and the opening of the content.
func imagePromptFor(segment dto.SegmentDTO, stylePrompt string) string {
	prompt := strings.TrimSpace(segment.ImagePrompt)
	if prompt == "" {
		content := []rune(segment.Content)
		if len(content) > 100 {
			content = content[:100]
		}
		prompt = stylePrompt + "，" + string(content)
	}
	return prompt
}
