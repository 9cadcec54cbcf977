package dto

// SessionInputRequest updates the composed analysis request of a session.
type SessionInputRequest struct {
	Text        string `json:"text"`
	StylePrompt string `json:"style_prompt"`
	MaxSegments int    `json:"max_segments" validate:"omitempty,min=1,max=20"`
}

// EditSegmentRequest mutates one editable field of one segment.
type EditSegmentRequest struct {
	Field string `json:"field" validate:"required,oneof=content summary image_prompt"`
	Value string `json:"value"`
}

type SessionRequestState struct {
	Text        string `json:"text"`
	StylePrompt string `json:"style_prompt"`
	MaxSegments int    `json:"max_segments"`
}

type SessionBatchState struct {
	BatchId string              `json:"batch_id"`
	Images  []GeneratedImageDTO `json:"images"`
}

// SessionStateResponse is the full observable state of one card session: the
// current stage, the editable request fields, the segment collection, the
// latest batch and the single user-visible error slot.
type SessionStateResponse struct {
	SessionId string              `json:"session_id"`
	Stage     string              `json:"stage"`
	Loading   bool                `json:"loading"`
	Error     string              `json:"error,omitempty"`
	Request   SessionRequestState `json:"request"`
	Segments  []SegmentDTO        `json:"segments"`
	Batch     *SessionBatchState  `json:"batch,omitempty"`
}
