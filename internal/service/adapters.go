package service

import (
	"context"

	"textcards-be/internal/dto"
	"textcards-be/pkg/pipeline"
)

// localAnalyzer satisfies the workflow's analysis contract with the in-process
// service, so sessions served by this binary skip the HTTP round trip.
type localAnalyzer struct {
	svc IAnalysisService
}

func NewLocalAnalyzer(svc IAnalysisService) pipeline.Analyzer {
	return &localAnalyzer{svc: svc}
}

var _ pipeline.Analyzer = &localAnalyzer{}

func (a *localAnalyzer) AnalyzeText(ctx context.Context, req pipeline.AnalysisRequest) (*pipeline.AnalysisResult, error) {
	resp, err := a.svc.Analyze(ctx, &dto.AnalyzeTextRequest{
		Text:        req.Text,
		StylePrompt: req.StylePrompt,
		MaxSegments: req.MaxSegments,
	})
	if err != nil {
		return nil, err
	}

	segments := make([]pipeline.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, pipeline.Segment{
			Id:          seg.Id,
			Content:     seg.Content,
			Summary:     seg.Summary,
			ImagePrompt: seg.ImagePrompt,
		})
	}
	return &pipeline.AnalysisResult{Segments: segments}, nil
}

// localGenerator is the generation-side counterpart of localAnalyzer.
type localGenerator struct {
	svc IGenerationService
}

func NewLocalGenerator(svc IGenerationService) pipeline.Generator {
	return &localGenerator{svc: svc}
}

var _ pipeline.Generator = &localGenerator{}

func (g *localGenerator) GenerateImages(ctx context.Context, req pipeline.GenerationRequest) (*pipeline.GenerationResult, error) {
	segments := make([]dto.SegmentDTO, 0, len(req.Segments))
	for _, seg := range req.Segments {
		segments = append(segments, dto.SegmentDTO{
			Id:          seg.Id,
			Content:     seg.Content,
			Summary:     seg.Summary,
			ImagePrompt: seg.ImagePrompt,
		})
	}

	resp, err := g.svc.Generate(ctx, &dto.GenerateImagesRequest{
		Segments:    segments,
		StylePrompt: req.StylePrompt,
		ImageSize:   req.ImageSize,
	})
	if err != nil {
		return nil, err
	}

	images := make([]pipeline.RawImage, 0, len(resp.Images))
	for _, img := range resp.Images {
		id := img.SegmentId
		images = append(images, pipeline.RawImage{
			SegmentId: &id,
			ImageURL:  img.ImageURL,
			Status:    img.Status,
			Prompt:    img.Prompt,
		})
	}
	return &pipeline.GenerationResult{BatchId: resp.BatchId, Images: images}, nil
}
