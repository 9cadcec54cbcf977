package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"textcards-be/internal/dto"
	"textcards-be/internal/pkg/logger"
	"textcards-be/pkg/llm"
	"textcards-be/pkg/pipeline"
	"textcards-be/pkg/textsplit"
)

const (
	defaultStylePrompt = "现代简约风格"
	defaultMaxSegments = 10
	maxTextRunes       = 10000

	// Observed generation time per card, used for the client-side estimate.
	secondsPerSegment = 30
)

type IAnalysisService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeTextRequest) (*dto.AnalyzeTextResponse, error)
}

type analysisService struct {
	provider llm.LLMProvider // nil runs the local segmentation path only
	log      logger.ILogger
}

func NewAnalysisService(provider llm.LLMProvider, log logger.ILogger) IAnalysisService {
	return &analysisService{
		provider: provider,
		log:      log,
	}
}

// Analyze validates and segments the text. The model path asks the LLM to
// summarize and visualize each pre-split segment; any model or parsing
// failure degrades to the local summary and prompt builders, never to an
// error. Only invalid input is rejected.
func (s *analysisService) Analyze(ctx context.Context, req *dto.AnalyzeTextRequest) (*dto.AnalyzeTextResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &pipeline.ValidationError{Message: "文本内容不能为空"}
	}
	if utf8.RuneCountInString(req.Text) > maxTextRunes {
		return nil, &pipeline.ValidationError{Message: "文本长度不能超过10000字"}
	}

	stylePrompt := req.StylePrompt
	if stylePrompt == "" {
		stylePrompt = defaultStylePrompt
	}
	maxSegments := req.MaxSegments
	if maxSegments <= 0 {
		maxSegments = defaultMaxSegments
	}

	kind := textsplit.DetectKind(req.Text)
	rawSegments := textsplit.Split(req.Text, kind, maxSegments)
	s.log.Info("analysis", "text segmented", map[string]interface{}{
		"kind":     string(kind),
		"segments": len(rawSegments),
	})

	var segments []dto.SegmentDTO
	if s.provider != nil {
		segments = s.analyzeWithModel(ctx, rawSegments, stylePrompt, kind)
	}
	if segments == nil {
		segments = localSegments(rawSegments, stylePrompt, kind)
	}

	if len(segments) > maxSegments {
		segments = segments[:maxSegments]
	}

	return &dto.AnalyzeTextResponse{
		Segments:      segments,
		TotalCount:    len(segments),
		EstimatedTime: len(segments) * secondsPerSegment,
	}, nil
}

// modelSegment is the JSON object shape the analysis prompt asks the model
// to emit per segment.
type modelSegment struct {
	Id          int    `json:"id"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	ImagePrompt string `json:"image_prompt"`
}

func (s *analysisService) analyzeWithModel(ctx context.Context, rawSegments []string, stylePrompt string, kind textsplit.Kind) []dto.SegmentDTO {
	prompt := buildAnalysisPrompt(rawSegments, stylePrompt, kind)

	response, err := s.provider.Generate(ctx, prompt,
		llm.WithTemperature(0.6),
		llm.WithMaxTokens(6000),
	)
	if err != nil {
		s.log.Warn("analysis", "model call failed, using local segmentation", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	var parsed []modelSegment
	if err := json.Unmarshal([]byte(extractJSONArray(response)), &parsed); err != nil {
		s.log.Warn("analysis", "model response not parseable, using local segmentation", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	segments := make([]dto.SegmentDTO, 0, len(rawSegments))
	for i, raw := range rawSegments {
		seg := dto.SegmentDTO{
			Id:          i + 1,
			Content:     raw, // always the original segment text, not the model's
			Summary:     textsplit.Summary(raw, i+1, kind),
			ImagePrompt: textsplit.ImagePrompt(raw, stylePrompt, kind),
		}
		if i < len(parsed) {
			if parsed[i].Summary != "" {
				seg.Summary = parsed[i].Summary
			}
			if parsed[i].ImagePrompt != "" {
				seg.ImagePrompt = parsed[i].ImagePrompt
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

func localSegments(rawSegments []string, stylePrompt string, kind textsplit.Kind) []dto.SegmentDTO {
	segments := make([]dto.SegmentDTO, len(rawSegments))
	for i, raw := range rawSegments {
		segments[i] = dto.SegmentDTO{
			Id:          i + 1,
			Content:     raw,
			Summary:     textsplit.Summary(raw, i+1, kind),
			ImagePrompt: textsplit.ImagePrompt(raw, stylePrompt, kind),
		}
	}
	return segments
}

func buildAnalysisPrompt(rawSegments []string, stylePrompt string, kind textsplit.Kind) string {
	var sb strings.Builder
	sb.WriteString("你是社交平台内容创作专家，请对以下已分段的长文本进行视觉化处理。\n\n")
	sb.WriteString("任务要求：\n")
	sb.WriteString("1. 为每段内容提供精准的主题摘要（20字以内）\n")
	sb.WriteString("2. 为每段生成适合竖版配图的图片描述，包含场景、主体元素、氛围与色调\n")
	sb.WriteString("3. 严格按照JSON数组格式返回，每个对象包含 id、content、summary、image_prompt 字段\n\n")
	sb.WriteString("指定风格融合：" + stylePrompt + "\n")
	sb.WriteString("文本类型：" + string(kind) + "\n")

	for i, seg := range rawSegments {
		sb.WriteString("\n\n【第")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("段】\n")
		sb.WriteString(seg)
	}

	sb.WriteString("\n\n请只返回JSON数组，不要附加其他说明。")
	return sb.String()
}

// extractJSONArray pulls the JSON array out of a model response that may wrap
// it in a code fence or surrounding prose.
func extractJSONArray(response string) string {
	if idx := strings.Index(response, "```json"); idx >= 0 {
		rest := response[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start >= 0 && end > start {
		return response[start : end+1]
	}
	return response
}
