package pipeline

import (
	"strings"
)

// Segment is one unit of the source text, destined for one generated image.
// Id is stable once assigned; the other fields are user-editable.
type Segment struct {
	Id          int    `json:"id"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	ImagePrompt string `json:"image_prompt"`
}

// Editable field names accepted by SegmentStore.Edit.
const (
	FieldContent     = "content"
	FieldSummary     = "summary"
	FieldImagePrompt = "image_prompt"
)

const (
	summaryRuneLimit   = 20
	summaryEllipsis    = "…"
	imagePromptPrefix  = "Depicts: "
	placeholderSummary = "新段落"
)

// SummaryOf derives a short title from content: the first 20 runes, with an
// ellipsis appended when the content is longer.
func SummaryOf(content string) string {
	runes := []rune(content)
	if len(runes) <= summaryRuneLimit {
		return content
	}
	return string(runes[:summaryRuneLimit]) + summaryEllipsis
}

// ImagePromptOf derives a generation instruction from a summary.
func ImagePromptOf(summary string) string {
	return imagePromptPrefix + summary
}

// SegmentStore owns the ordered, id-keyed segment collection. Insertion order
// is the display and processing order; Add appends, Remove keeps relative
// order, Edit never reorders.
type SegmentStore struct {
	segments []Segment
}

func NewSegmentStore() *SegmentStore {
	return &SegmentStore{}
}

// Seed replaces the whole collection, preserving the input order. Used once
// right after a successful analysis.
func (s *SegmentStore) Seed(segments []Segment) {
	s.segments = make([]Segment, len(segments))
	copy(s.segments, segments)
}

// Add appends a fresh segment with id = max(existing ids) + 1, empty content
// and placeholder summary/prompt. It always succeeds.
func (s *SegmentStore) Add() Segment {
	seg := Segment{
		Id:          s.nextId(),
		Content:     "",
		Summary:     placeholderSummary,
		ImagePrompt: ImagePromptOf(placeholderSummary),
	}
	s.segments = append(s.segments, seg)
	return seg
}

func (s *SegmentStore) nextId() int {
	max := 0
	for _, seg := range s.segments {
		if seg.Id > max {
			max = seg.Id
		}
	}
	return max + 1
}

// Remove deletes the segment with the given id. Removing an absent id is a
// no-op, not an error.
func (s *SegmentStore) Remove(id int) {
	for i, seg := range s.segments {
		if seg.Id == id {
			s.segments = append(s.segments[:i], s.segments[i+1:]...)
			return
		}
	}
}

// Edit mutates one field of one segment. Editing an absent id is a silent
// no-op. A non-blank content edit also rewrites the derived summary and image
// prompt; edits to summary or image_prompt never trigger derivation, and a
// blank content edit leaves the derived fields as they are.
func (s *SegmentStore) Edit(id int, field, value string) {
	for i := range s.segments {
		if s.segments[i].Id != id {
			continue
		}
		switch field {
		case FieldContent:
			s.segments[i].Content = value
			if strings.TrimSpace(value) != "" {
				s.segments[i].Summary = SummaryOf(value)
				s.segments[i].ImagePrompt = ImagePromptOf(s.segments[i].Summary)
			}
		case FieldSummary:
			s.segments[i].Summary = value
		case FieldImagePrompt:
			s.segments[i].ImagePrompt = value
		}
		return
	}
}

// Find returns the segment with the given id.
func (s *SegmentStore) Find(id int) (Segment, bool) {
	for _, seg := range s.segments {
		if seg.Id == id {
			return seg, true
		}
	}
	return Segment{}, false
}

// Snapshot returns a copy of the current ordered collection. Generation
// requests are always built from this, never from the analysis result.
func (s *SegmentStore) Snapshot() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

func (s *SegmentStore) Len() int {
	return len(s.segments)
}

// Clear empties the collection. Used on restart.
func (s *SegmentStore) Clear() {
	s.segments = nil
}
