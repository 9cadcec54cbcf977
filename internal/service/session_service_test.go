package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textcards-be/internal/dto"
	"textcards-be/internal/repository/memory"
	"textcards-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
)

// newSessionServiceForTest wires the full local stack: session service over
// the real analysis and generation services, no LLM, fake image provider.
func newSessionServiceForTest() ISessionService {
	analysis := NewAnalysisService(nil, nopLogger{})
	generation := NewGenerationService(&fakeImageProvider{}, memory.NewBatchRepository(), nopLogger{})
	sessions := memory.NewSessionRepository(time.Hour, time.Hour)
	return NewSessionService(sessions, NewLocalAnalyzer(analysis), NewLocalGenerator(generation), nopLogger{})
}

func TestSessionLifecycle(t *testing.T) {
	svc := newSessionServiceForTest()

	state := svc.Create()
	require.NotEmpty(t, state.SessionId)
	assert.Equal(t, "input", state.Stage)
	assert.Equal(t, "现代简约风格", state.Request.StylePrompt)
	assert.Equal(t, 10, state.Request.MaxSegments)

	// Analyze advances to segmenting with segments from the local splitter.
	state, err := svc.Analyze(context.Background(), state.SessionId, &dto.SessionInputRequest{
		Text: "清晨的小镇还在沉睡。\n\n集市上的摊贩已经开始忙碌。\n\n孩子们背着书包走向学校。",
	})
	require.NoError(t, err)
	assert.Equal(t, "segmenting", state.Stage)
	assert.Empty(t, state.Error)
	require.NotEmpty(t, state.Segments)

	state, err = svc.Proceed(state.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "prompt_editing", state.Stage)

	state, err = svc.Generate(context.Background(), state.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "generated", state.Stage)
	require.NotNil(t, state.Batch)
	assert.NotEmpty(t, state.Batch.BatchId)
	assert.Len(t, state.Batch.Images, len(state.Segments))
}

func TestSessionAnalyzeValidationLandsInErrorSlot(t *testing.T) {
	svc := newSessionServiceForTest()
	created := svc.Create()

	state, err := svc.Analyze(context.Background(), created.SessionId, &dto.SessionInputRequest{Text: " "})

	// Local rejection is part of the state, not a transport error.
	require.NoError(t, err)
	assert.Equal(t, "input", state.Stage)
	assert.Equal(t, "请输入要转换的文本内容", state.Error)
}

func TestSessionSegmentEditing(t *testing.T) {
	svc := newSessionServiceForTest()
	created := svc.Create()

	state, err := svc.Analyze(context.Background(), created.SessionId, &dto.SessionInputRequest{
		Text: "第一段的故事。\n\n第二段的故事。",
	})
	require.NoError(t, err)
	before := len(state.Segments)

	state, err = svc.AddSegment(created.SessionId)
	require.NoError(t, err)
	require.Len(t, state.Segments, before+1)
	added := state.Segments[len(state.Segments)-1]

	state, err = svc.EditSegment(created.SessionId, added.Id, &dto.EditSegmentRequest{
		Field: "content",
		Value: "补充的第三段内容",
	})
	require.NoError(t, err)
	edited := state.Segments[len(state.Segments)-1]
	assert.Equal(t, "补充的第三段内容", edited.Content)
	assert.NotEmpty(t, edited.Summary)

	state, err = svc.RemoveSegment(created.SessionId, added.Id)
	require.NoError(t, err)
	assert.Len(t, state.Segments, before)
}

func TestSessionEditOutsideEditableStageFails(t *testing.T) {
	svc := newSessionServiceForTest()
	created := svc.Create()

	_, err := svc.AddSegment(created.SessionId)

	require.Error(t, err)
	assert.True(t, pipeline.IsValidation(err))
}

func TestSessionRestartResetsState(t *testing.T) {
	svc := newSessionServiceForTest()
	created := svc.Create()

	_, err := svc.Analyze(context.Background(), created.SessionId, &dto.SessionInputRequest{
		Text:        "一段用来测试的文字。\n\n另一段用来测试的文字。",
		StylePrompt: "水彩画",
	})
	require.NoError(t, err)

	state, err := svc.Restart(created.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "input", state.Stage)
	assert.Empty(t, state.Segments)
	assert.Nil(t, state.Batch)
	assert.Equal(t, "现代简约风格", state.Request.StylePrompt)
	assert.Empty(t, state.Request.Text)
}

func TestSessionUnknownIdReturns404(t *testing.T) {
	svc := newSessionServiceForTest()

	_, err := svc.Get("missing")

	require.Error(t, err)
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
}
