package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeAnalyzer struct {
	result *AnalysisResult
	err    error
	calls  int
	last   AnalysisRequest
}

func (f *fakeAnalyzer) AnalyzeText(_ context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGenerator struct {
	result *GenerationResult
	err    error
	calls  int
	last   GenerationRequest
}

func (f *fakeGenerator) GenerateImages(_ context.Context, req GenerationRequest) (*GenerationResult, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func threeSegments() []Segment {
	return []Segment{
		{Id: 1, Content: "春天来了，万物复苏", Summary: "春天来了，万物复苏", ImagePrompt: "Depicts: 春天来了，万物复苏"},
		{Id: 2, Content: "樱花盛开的街道", Summary: "樱花盛开的街道", ImagePrompt: "Depicts: 樱花盛开的街道"},
		{Id: 3, Content: "孩子们在公园里奔跑", Summary: "孩子们在公园里奔跑", ImagePrompt: "Depicts: 孩子们在公园里奔跑"},
	}
}

func newTestSession(analyzer *fakeAnalyzer, generator *fakeGenerator) *Session {
	if analyzer == nil {
		analyzer = &fakeAnalyzer{result: &AnalysisResult{Segments: threeSegments()}}
	}
	if generator == nil {
		generator = &fakeGenerator{result: &GenerationResult{BatchId: "batch-1"}}
	}
	return NewSession("session-1", analyzer, generator)
}

func TestAnalyzeSuccessAdvancesToSegmenting(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &AnalysisResult{Segments: threeSegments()}}
	s := newTestSession(analyzer, nil)
	s.SetInput("春天来了，万物复苏。樱花盛开。孩子们在奔跑。", "", 8)

	err := s.Analyze(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, StageSegmenting, s.Stage())
	assert.Len(t, s.Segments(), 3)
	assert.Empty(t, s.LastError())
	assert.Equal(t, 8, analyzer.last.MaxSegments)
	assert.Equal(t, DefaultStylePrompt, analyzer.last.StylePrompt)
}

func TestAnalyzeBlankTextRejectedLocally(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	s := newTestSession(analyzer, nil)
	s.SetInput("   ", "", 0)

	err := s.Analyze(context.Background())

	assert.True(t, IsValidation(err))
	assert.Equal(t, StageInput, s.Stage())
	assert.Equal(t, 0, analyzer.calls, "no network call on blank text")
	assert.NotEmpty(t, s.LastError())
}

func TestAnalyzeOversizedTextRejectedLocally(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	s := newTestSession(analyzer, nil)

	runes := make([]rune, 10001)
	for i := range runes {
		runes[i] = '春'
	}
	s.SetInput(string(runes), "", 0)

	err := s.Analyze(context.Background())

	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, analyzer.calls)
	assert.Equal(t, StageInput, s.Stage())
}

func TestAnalyzeRemoteFailureKeepsStage(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &RemoteError{Message: "文本分析失败: 模型超时"}}
	s := newTestSession(analyzer, nil)
	s.SetInput("一段足够长的文本", "", 0)

	err := s.Analyze(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StageInput, s.Stage())
	assert.Equal(t, "文本分析失败: 模型超时", s.LastError())
	assert.False(t, s.Loading())
}

// blockingAnalyzer parks inside the call until released, so tests can observe
// the session mid-flight.
type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
	result  *AnalysisResult
}

func (b *blockingAnalyzer) AnalyzeText(_ context.Context, _ AnalysisRequest) (*AnalysisResult, error) {
	close(b.started)
	<-b.release
	return b.result, nil
}

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
	result  *GenerationResult
}

func (b *blockingGenerator) GenerateImages(_ context.Context, _ GenerationRequest) (*GenerationResult, error) {
	close(b.started)
	<-b.release
	return b.result, nil
}

func TestAnalyzeWhileInFlightRejected(t *testing.T) {
	analyzer := &blockingAnalyzer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  &AnalysisResult{Segments: threeSegments()},
	}
	s := NewSession("session-1", analyzer, &fakeGenerator{})
	s.SetInput("春天来了", "", 0)

	done := make(chan error, 1)
	go func() { done <- s.Analyze(context.Background()) }()
	<-analyzer.started

	// One network call at a time: a second analyze is rejected while the
	// first is still in flight, and so is a generate.
	err := s.Analyze(context.Background())
	assert.True(t, IsValidation(err))
	assert.Equal(t, "正在处理中，请稍候", err.Error())
	assert.True(t, s.Loading())

	err = s.Generate(context.Background())
	assert.True(t, IsValidation(err))
	assert.Equal(t, "正在处理中，请稍候", err.Error())

	close(analyzer.release)
	assert.NoError(t, <-done)
	assert.Equal(t, StageSegmenting, s.Stage())
	assert.False(t, s.Loading())
}

func TestGenerateWhileInFlightRejected(t *testing.T) {
	generator := &blockingGenerator{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  &GenerationResult{BatchId: "batch-9"},
	}
	analyzer := &fakeAnalyzer{result: &AnalysisResult{Segments: threeSegments()}}
	s := NewSession("session-1", analyzer, generator)
	s.SetInput("春天来了", "", 0)
	assert.NoError(t, s.Analyze(context.Background()))
	assert.NoError(t, s.Proceed())

	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background()) }()
	<-generator.started

	err := s.Generate(context.Background())
	assert.True(t, IsValidation(err))
	assert.Equal(t, "正在处理中，请稍候", err.Error())
	assert.True(t, s.Loading())

	close(generator.release)
	assert.NoError(t, <-done)
	assert.Equal(t, StageGenerated, s.Stage())
	assert.Equal(t, "batch-9", s.Batch().BatchId)
	assert.False(t, s.Loading())
}

func TestAnalyzeGenericFailureMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("connection refused")}
	s := newTestSession(analyzer, nil)
	s.SetInput("一段足够长的文本", "", 0)

	_ = s.Analyze(context.Background())

	assert.Equal(t, "文本分析失败，请稍后重试", s.LastError())
}

func TestGenerateUsesLiveSnapshot(t *testing.T) {
	generator := &fakeGenerator{result: &GenerationResult{BatchId: "batch-7"}}
	s := newTestSession(nil, generator)
	s.SetInput("春天来了", "", 0)
	assert.NoError(t, s.Analyze(context.Background()))

	// Edit the store after analysis: remove one, add one, tweak a prompt.
	assert.NoError(t, s.RemoveSegment(2))
	added, err := s.AddSegment()
	assert.NoError(t, err)
	assert.NoError(t, s.EditSegment(added.Id, FieldImagePrompt, "黄昏的城市天际线"))
	assert.NoError(t, s.Proceed())

	assert.NoError(t, s.Generate(context.Background()))

	ids := make([]int, len(generator.last.Segments))
	for i, seg := range generator.last.Segments {
		ids[i] = seg.Id
	}
	assert.Equal(t, []int{1, 3, 4}, ids, "payload must be the live snapshot, not the analysis result")
	assert.Equal(t, "黄昏的城市天际线", generator.last.Segments[2].ImagePrompt)
	assert.Equal(t, DefaultImageSize, generator.last.ImageSize)
	assert.Equal(t, StageGenerated, s.Stage())
	assert.Equal(t, "batch-7", s.Batch().BatchId)
}

func TestGenerateEmptyStoreRejectedLocally(t *testing.T) {
	generator := &fakeGenerator{}
	analyzer := &fakeAnalyzer{result: &AnalysisResult{Segments: nil}}
	s := newTestSession(analyzer, generator)
	s.SetInput("春天来了", "", 0)
	assert.NoError(t, s.Analyze(context.Background()))
	assert.NoError(t, s.Proceed())

	err := s.Generate(context.Background())

	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, generator.calls, "no network call on empty store")
	assert.Equal(t, StagePromptEditing, s.Stage())
	assert.NotEmpty(t, s.LastError())
}

func TestGenerateNormalizesSparseImages(t *testing.T) {
	segId := 2
	generator := &fakeGenerator{result: &GenerationResult{
		BatchId: "batch-2",
		Images: []RawImage{
			{ImageURL: "https://img.example.com/a.png"},
			{SegmentId: &segId, ImageURL: "https://img.example.com/b.png", Status: StatusFailed, Prompt: "自定义提示"},
		},
	}}
	s := newTestSession(nil, generator)
	s.SetInput("春天来了", "", 0)
	assert.NoError(t, s.Analyze(context.Background()))
	assert.NoError(t, s.Proceed())
	assert.NoError(t, s.Generate(context.Background()))

	images := s.Batch().Images
	assert.Len(t, images, 2)

	// Missing fields default: segment_id → index+1, status → completed,
	// prompt → positional segment's image prompt.
	assert.Equal(t, 1, images[0].SegmentId)
	assert.Equal(t, StatusCompleted, images[0].Status)
	assert.Equal(t, "Depicts: 春天来了，万物复苏", images[0].Prompt)

	assert.Equal(t, 2, images[1].SegmentId)
	assert.Equal(t, StatusFailed, images[1].Status)
	assert.Equal(t, "自定义提示", images[1].Prompt)
}

func TestGenerateRemoteFailureKeepsStage(t *testing.T) {
	generator := &fakeGenerator{err: &RemoteError{Message: "图片生成失败: 配额不足"}}
	s := newTestSession(nil, generator)
	s.SetInput("春天来了", "", 0)
	assert.NoError(t, s.Analyze(context.Background()))
	assert.NoError(t, s.Proceed())

	err := s.Generate(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StagePromptEditing, s.Stage())
	assert.Equal(t, "图片生成失败: 配额不足", s.LastError())
	assert.Nil(t, s.Batch())
}

func TestGoBackStepsOneStageAndClearsError(t *testing.T) {
	s := newTestSession(nil, nil)
	s.SetInput("春天来了", "", 0)
	assert.NoError(t, s.Analyze(context.Background()))
	assert.NoError(t, s.Proceed())
	assert.NoError(t, s.Generate(context.Background()))
	assert.Equal(t, StageGenerated, s.Stage())

	assert.NoError(t, s.GoBack())
	assert.Equal(t, StagePromptEditing, s.Stage())
	// Batch is retained until overwritten.
	assert.NotNil(t, s.Batch())

	assert.NoError(t, s.GoBack())
	assert.Equal(t, StageSegmenting, s.Stage())
	assert.NoError(t, s.GoBack())
	assert.Equal(t, StageInput, s.Stage())

	err := s.GoBack()
	assert.True(t, IsValidation(err), "no stage before Input")
}

func TestRestartResetsEverything(t *testing.T) {
	s := newTestSession(nil, nil)
	s.SetInput("春天来了", "水彩风格", 5)
	assert.NoError(t, s.Analyze(context.Background()))
	assert.NoError(t, s.Proceed())
	assert.NoError(t, s.Generate(context.Background()))
	assert.Equal(t, StageGenerated, s.Stage())

	s.Restart()

	assert.Equal(t, StageInput, s.Stage())
	assert.Empty(t, s.Segments())
	assert.Nil(t, s.Batch())
	assert.Empty(t, s.LastError())

	req := s.Request()
	assert.Empty(t, req.Text)
	assert.Equal(t, DefaultStylePrompt, req.StylePrompt)
	assert.Equal(t, DefaultMaxSegments, req.MaxSegments)
}

func TestEditingRequiresEditableStage(t *testing.T) {
	s := newTestSession(nil, nil)

	_, err := s.AddSegment()
	assert.True(t, IsValidation(err), "add is illegal at Input")
	assert.True(t, IsValidation(s.RemoveSegment(1)))
	assert.True(t, IsValidation(s.EditSegment(1, FieldContent, "x")))
}

func TestEditSegmentRejectsUnknownField(t *testing.T) {
	s := newTestSession(nil, nil)
	s.SetInput("春天来了", "", 0)
	assert.NoError(t, s.Analyze(context.Background()))

	err := s.EditSegment(1, "title", "x")
	assert.True(t, IsValidation(err))
}
