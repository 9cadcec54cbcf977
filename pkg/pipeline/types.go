package pipeline

import "context"

// Image statuses as reported by the generation service.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AnalysisRequest carries the user's raw text and styling configuration.
type AnalysisRequest struct {
	Text        string
	StylePrompt string
	MaxSegments int
}

// AnalysisResult seeds the SegmentStore once and is discarded; the store is
// the source of truth afterwards.
type AnalysisResult struct {
	Segments []Segment
}

// GenerationRequest carries the store's live snapshot, so edits, additions and
// removals made after analysis are respected.
type GenerationRequest struct {
	Segments    []Segment
	StylePrompt string
	ImageSize   string
}

// RawImage is one image record as returned by the generation service, before
// defaulting. The remote response shape does not guarantee every field.
type RawImage struct {
	SegmentId *int
	ImageURL  string
	Status    string
	Prompt    string
}

// GenerationResult is the raw, un-normalized generation response.
type GenerationResult struct {
	BatchId string
	Images  []RawImage
}

// GeneratedImage is a read-only artifact of one generation batch.
type GeneratedImage struct {
	SegmentId int    `json:"segment_id"`
	ImageURL  string `json:"image_url"`
	Status    string `json:"status"`
	Prompt    string `json:"prompt"`
}

// Batch is the outcome of one successful generation call. Restarting the
// workflow discards it.
type Batch struct {
	BatchId string           `json:"batch_id"`
	Images  []GeneratedImage `json:"images"`
}

// Analyzer turns raw text plus configuration into an initial segment list.
type Analyzer interface {
	AnalyzeText(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

// Generator renders the current segment snapshot into a batch of images.
type Generator interface {
	GenerateImages(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// NormalizeImages applies the defaulting rules for loosely specified response
// records: a missing segment_id becomes the positional index+1, a missing
// status becomes "completed", and a missing prompt falls back to the
// positionally corresponding segment's image prompt.
func NormalizeImages(raw []RawImage, segments []Segment) []GeneratedImage {
	out := make([]GeneratedImage, len(raw))
	for i, img := range raw {
		norm := GeneratedImage{
			ImageURL: img.ImageURL,
			Status:   img.Status,
			Prompt:   img.Prompt,
		}
		if img.SegmentId != nil {
			norm.SegmentId = *img.SegmentId
		} else {
			norm.SegmentId = i + 1
		}
		if norm.Status == "" {
			norm.Status = StatusCompleted
		}
		if norm.Prompt == "" && i < len(segments) {
			norm.Prompt = segments[i].ImagePrompt
		}
		out[i] = norm
	}
	return out
}
