package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/examforge/examforge-backend/internal/model"
	"github.com/examforge/examforge-backend/internal/repository"
)

// Session errors.
var ErrSessionNotFound = errors.New("session not found")

// SessionService serves invigilator monitoring: live sessions, per-student
// progress and suspicious-activity flags.
type SessionService struct {
	sessionRepo *repository.ExamSessionRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessionRepo *repository.ExamSessionRepository) *SessionService {
	return &SessionService{sessionRepo: sessionRepo}
}

// ListActive returns all running monitoring sessions.
func (s *SessionService) ListActive(ctx context.Context) ([]model.ExamSession, error) {
	return s.sessionRepo.ListActive(ctx)
}

// Get fetches one session.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// StudentProgress returns live per-student state for a session's exam.
func (s *SessionService) StudentProgress(ctx context.Context, sessionID uuid.UUID) ([]model.StudentProgress, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.ListStudentProgress(ctx, session.ExamID)
}

// FlagStudent records an invigilator-raised flag against a student.
func (s *SessionService) FlagStudent(ctx context.Context, sessionID uuid.UUID, flaggedBy int, req *model.FlagStudentRequest) (*model.SessionFlag, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	flag, err := s.sessionRepo.CreateFlag(ctx, session.ID, req.StudentID, flaggedBy, req.FlagType, req.Description)
	if err != nil {
		return nil, fmt.Errorf("create flag: %w", err)
	}
	return flag, nil
}

// ListFlags returns a session's flags, newest first.
func (s *SessionService) ListFlags(ctx context.Context, sessionID uuid.UUID) ([]model.SessionFlag, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.ListFlags(ctx, session.ID)
}
