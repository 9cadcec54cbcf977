package pipeline

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"
)

// Request field defaults, restored on restart.
const (
	DefaultStylePrompt = "现代简约风格"
	DefaultMaxSegments = 10
	DefaultImageSize   = "3:4"

	maxTextRunes = 10000
)

// User-facing messages for local rejections and remote failures.
const (
	msgTextRequired    = "请输入要转换的文本内容"
	msgTextTooLong     = "文本长度不能超过10000字"
	msgNoSegments      = "没有可生成的段落"
	msgBusy            = "正在处理中，请稍候"
	msgStageNotAllowed = "当前阶段不支持该操作"
	msgAnalyzeFailed   = "文本分析失败，请稍后重试"
	msgGenerateFailed  = "图片生成失败，请稍后重试"
)

// Session is the explicitly owned per-user workflow context: one stage, one
// segment store, at most one batch, the editable request fields, a single
// user-visible error slot and a single in-flight flag. Nothing here is
// process-global, so any number of sessions can live side by side.
type Session struct {
	Id string

	analyzer  Analyzer
	generator Generator

	mu       sync.Mutex
	stage    Stage
	inFlight bool
	epoch    int
	store    *SegmentStore
	batch    *Batch
	errMsg   string

	text        string
	stylePrompt string
	maxSegments int
	imageSize   string
}

func NewSession(id string, analyzer Analyzer, generator Generator) *Session {
	return &Session{
		Id:          id,
		analyzer:    analyzer,
		generator:   generator,
		stage:       StageInput,
		store:       NewSegmentStore(),
		stylePrompt: DefaultStylePrompt,
		maxSegments: DefaultMaxSegments,
		imageSize:   DefaultImageSize,
	}
}

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastError returns the current user-visible message; empty when none.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) Batch() *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch
}

// Segments returns the store's current ordered snapshot.
func (s *Session) Segments() []Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Request returns the current editable request fields.
func (s *Session) Request() AnalysisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AnalysisRequest{Text: s.text, StylePrompt: s.stylePrompt, MaxSegments: s.maxSegments}
}

// SetInput updates the analysis request fields while composing. Zero
// maxSegments keeps the current value.
func (s *Session) SetInput(text, stylePrompt string, maxSegments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	if stylePrompt != "" {
		s.stylePrompt = stylePrompt
	}
	if maxSegments > 0 {
		s.maxSegments = maxSegments
	}
}

// Analyze validates the composed request locally, then calls the analysis
// service and seeds the store from its result. On success the stage advances
// to Segmenting; on failure the stage stays at Input and the error slot holds
// a human-readable message. The network call runs outside the lock; a restart
// during the call makes its result land on a stale epoch and be dropped.
func (s *Session) Analyze(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return &ValidationError{Message: msgBusy}
	}
	if s.stage != StageInput {
		s.mu.Unlock()
		return &ValidationError{Message: msgStageNotAllowed}
	}
	if err := validateText(s.text); err != nil {
		s.errMsg = err.Message
		s.mu.Unlock()
		return err
	}
	req := AnalysisRequest{Text: s.text, StylePrompt: s.stylePrompt, MaxSegments: s.maxSegments}
	s.inFlight = true
	s.errMsg = ""
	epoch := s.epoch
	s.mu.Unlock()

	result, err := s.analyzer.AnalyzeText(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// Session was restarted while the call was in flight.
		return nil
	}
	s.inFlight = false
	if err != nil {
		s.errMsg = remoteMessage(err, msgAnalyzeFailed)
		return err
	}
	s.store.Seed(result.Segments)
	s.stage = StageSegmenting
	return nil
}

// Proceed moves Segmenting → PromptEditing. It is a pure state change with no
// network call.
func (s *Session) Proceed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageSegmenting {
		return &ValidationError{Message: msgStageNotAllowed}
	}
	s.stage = StagePromptEditing
	s.errMsg = ""
	return nil
}

// Generate sends the store's live snapshot to the generation service. An
// empty store is rejected locally without a network call. On success the
// normalized images become the session's batch and the stage advances to
// Generated; on failure the stage stays at PromptEditing.
func (s *Session) Generate(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return &ValidationError{Message: msgBusy}
	}
	if s.stage != StagePromptEditing {
		s.mu.Unlock()
		return &ValidationError{Message: msgStageNotAllowed}
	}
	if s.store.Len() == 0 {
		err := &ValidationError{Message: msgNoSegments}
		s.errMsg = err.Message
		s.mu.Unlock()
		return err
	}
	snapshot := s.store.Snapshot()
	req := GenerationRequest{Segments: snapshot, StylePrompt: s.stylePrompt, ImageSize: s.imageSize}
	s.inFlight = true
	s.errMsg = ""
	epoch := s.epoch
	s.mu.Unlock()

	result, err := s.generator.GenerateImages(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return nil
	}
	s.inFlight = false
	if err != nil {
		s.errMsg = remoteMessage(err, msgGenerateFailed)
		return err
	}
	s.batch = &Batch{
		BatchId: result.BatchId,
		Images:  NormalizeImages(result.Images, snapshot),
	}
	s.stage = StageGenerated
	return nil
}

// GoBack decrements exactly one stage. It never touches the store or the
// batch; its only side effect is dismissing any pending error message.
func (s *Session) GoBack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.stage.prev()
	if !ok {
		return &ValidationError{Message: msgStageNotAllowed}
	}
	s.stage = prev
	s.errMsg = ""
	return nil
}

// Restart unconditionally resets to Input: fields back to defaults, store and
// batch discarded, any in-flight call's result orphaned.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.stage = StageInput
	s.inFlight = false
	s.errMsg = ""
	s.store.Clear()
	s.batch = nil
	s.text = ""
	s.stylePrompt = DefaultStylePrompt
	s.maxSegments = DefaultMaxSegments
	s.imageSize = DefaultImageSize
}

// AddSegment appends a fresh segment. Legal while segmenting or prompt
// editing.
func (s *Session) AddSegment() (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stage.editable() {
		return Segment{}, &ValidationError{Message: msgStageNotAllowed}
	}
	return s.store.Add(), nil
}

// RemoveSegment deletes a segment; an absent id is a silent no-op.
func (s *Session) RemoveSegment(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stage.editable() {
		return &ValidationError{Message: msgStageNotAllowed}
	}
	s.store.Remove(id)
	return nil
}

// EditSegment mutates one field of one segment; an absent id is a silent
// no-op.
func (s *Session) EditSegment(id int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stage.editable() {
		return &ValidationError{Message: msgStageNotAllowed}
	}
	if field != FieldContent && field != FieldSummary && field != FieldImagePrompt {
		return &ValidationError{Message: "unknown segment field: " + field}
	}
	s.store.Edit(id, field, value)
	return nil
}

func validateText(text string) *ValidationError {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Message: msgTextRequired}
	}
	if utf8.RuneCountInString(text) > maxTextRunes {
		return &ValidationError{Message: msgTextTooLong}
	}
	return nil
}

// remoteMessage prefers the server-supplied detail carried by a RemoteError.
func remoteMessage(err error, fallback string) string {
	if re, ok := err.(*RemoteError); ok && re.Message != "" {
		return re.Message
	}
	if ve, ok := err.(*ValidationError); ok {
		return ve.Message
	}
	return fallback
}
