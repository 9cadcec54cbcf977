package service

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"textcards-be/internal/dto"
	"textcards-be/internal/pkg/logger"
	"textcards-be/internal/repository/memory"
	"textcards-be/pkg/pipeline"
)

// ISessionService drives the staged card workflow for server-held sessions.
// Every call returns the full session state so the frontend can render from a
// single response.
type ISessionService interface {
	Create() *dto.SessionStateResponse
	Get(sessionId string) (*dto.SessionStateResponse, error)
	Analyze(ctx context.Context, sessionId string, req *dto.SessionInputRequest) (*dto.SessionStateResponse, error)
	Proceed(sessionId string) (*dto.SessionStateResponse, error)
	Generate(ctx context.Context, sessionId string) (*dto.SessionStateResponse, error)
	AddSegment(sessionId string) (*dto.SessionStateResponse, error)
	EditSegment(sessionId string, segmentId int, req *dto.EditSegmentRequest) (*dto.SessionStateResponse, error)
	RemoveSegment(sessionId string, segmentId int) (*dto.SessionStateResponse, error)
	GoBack(sessionId string) (*dto.SessionStateResponse, error)
	Restart(sessionId string) (*dto.SessionStateResponse, error)
}

type sessionService struct {
	sessions  *memory.SessionRepository
	analyzer  pipeline.Analyzer
	generator pipeline.Generator
	log       logger.ILogger
}

func NewSessionService(sessions *memory.SessionRepository, analyzer pipeline.Analyzer, generator pipeline.Generator, log logger.ILogger) ISessionService {
	return &sessionService{
		sessions:  sessions,
		analyzer:  analyzer,
		generator: generator,
		log:       log,
	}
}

func (s *sessionService) Create() *dto.SessionStateResponse {
	session := pipeline.NewSession(uuid.NewString(), s.analyzer, s.generator)
	s.sessions.Save(session)
	s.log.Info("session", "session created", map[string]interface{}{
		"session_id": session.Id,
	})
	return sessionState(session)
}

func (s *sessionService) Get(sessionId string) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	return sessionState(session), nil
}

// Analyze stores the input fields and runs the analysis stage. A rejected or
// failed analysis still returns the session state: the user-visible message is
// in the state's error slot and the stage has not moved.
func (s *sessionService) Analyze(ctx context.Context, sessionId string, req *dto.SessionInputRequest) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	session.SetInput(req.Text, req.StylePrompt, req.MaxSegments)
	if err := session.Analyze(ctx); err != nil {
		s.log.Warn("session", "analyze failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	return sessionState(session), nil
}

func (s *sessionService) Proceed(sessionId string) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	if err := session.Proceed(); err != nil {
		return nil, err
	}
	return sessionState(session), nil
}

func (s *sessionService) Generate(ctx context.Context, sessionId string) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	if err := session.Generate(ctx); err != nil {
		s.log.Warn("session", "generate failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	return sessionState(session), nil
}

func (s *sessionService) AddSegment(sessionId string) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	if _, err := session.AddSegment(); err != nil {
		return nil, err
	}
	return sessionState(session), nil
}

func (s *sessionService) EditSegment(sessionId string, segmentId int, req *dto.EditSegmentRequest) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	if err := session.EditSegment(segmentId, req.Field, req.Value); err != nil {
		return nil, err
	}
	return sessionState(session), nil
}

func (s *sessionService) RemoveSegment(sessionId string, segmentId int) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	if err := session.RemoveSegment(segmentId); err != nil {
		return nil, err
	}
	return sessionState(session), nil
}

func (s *sessionService) GoBack(sessionId string) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	if err := session.GoBack(); err != nil {
		return nil, err
	}
	return sessionState(session), nil
}

func (s *sessionService) Restart(sessionId string) (*dto.SessionStateResponse, error) {
	session, err := s.find(sessionId)
	if err != nil {
		return nil, err
	}
	session.Restart()
	return sessionState(session), nil
}

func (s *sessionService) find(sessionId string) (*pipeline.Session, error) {
	session, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "会话不存在或已过期")
	}
	return session, nil
}

func sessionState(session *pipeline.Session) *dto.SessionStateResponse {
	req := session.Request()
	state := &dto.SessionStateResponse{
		SessionId: session.Id,
		Stage:     session.Stage().String(),
		Loading:   session.Loading(),
		Error:     session.LastError(),
		Request: dto.SessionRequestState{
			Text:        req.Text,
			StylePrompt: req.StylePrompt,
			MaxSegments: req.MaxSegments,
		},
		Segments: make([]dto.SegmentDTO, 0),
	}

	for _, seg := range session.Segments() {
		state.Segments = append(state.Segments, dto.SegmentDTO{
			Id:          seg.Id,
			Content:     seg.Content,
			Summary:     seg.Summary,
			ImagePrompt: seg.ImagePrompt,
		})
	}

	if batch := session.Batch(); batch != nil {
		images := make([]dto.GeneratedImageDTO, 0, len(batch.Images))
		for _, img := range batch.Images {
			images = append(images, dto.GeneratedImageDTO{
				SegmentId:    img.SegmentId,
				ImageURL:     img.ImageURL,
				ThumbnailURL: img.ImageURL,
				Status:       img.Status,
				Prompt:       img.Prompt,
			})
		}
		state.Batch = &dto.SessionBatchState{
			BatchId: batch.BatchId,
			Images:  images,
		}
	}
	return state
}
