package dto

// SegmentDTO is the wire shape of one text segment, shared by the analyze and
// generate contracts.
type SegmentDTO struct {
	Id          int    `json:"id"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	ImagePrompt string `json:"image_prompt"`
}

type AnalyzeTextRequest struct {
	Text        string `json:"text"`
	StylePrompt string `json:"style_prompt"`
	MaxSegments int    `json:"max_segments" validate:"omitempty,min=1,max=20"`
}

type AnalyzeTextResponse struct {
	Segments      []SegmentDTO `json:"segments"`
	TotalCount    int          `json:"total_count"`
	EstimatedTime int          `json:"estimated_time"` // seconds
}

type GenerateImagesRequest struct {
	Segments    []SegmentDTO `json:"segments"`
	StylePrompt string       `json:"style_prompt"`
	ImageSize   string       `json:"image_size"`
}

type GeneratedImageDTO struct {
	SegmentId    int    `json:"segment_id"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Status       string `json:"status"`
	Prompt       string `json:"prompt"`
}

type GenerateImagesResponse struct {
	BatchId    string              `json:"batch_id"`
	Images     []GeneratedImageDTO `json:"images"`
	TotalCount int                 `json:"total_count"`
}

type BatchStatusResponse struct {
	BatchId        string              `json:"batch_id"`
	Status         string              `json:"status"`
	Progress       int                 `json:"progress"` // percent
	CompletedCount int                 `json:"completed_count"`
	TotalCount     int                 `json:"total_count"`
	Images         []GeneratedImageDTO `json:"images"`
}
