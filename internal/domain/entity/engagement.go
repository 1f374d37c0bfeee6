package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// MaxCommentLength ограничивает длину комментария в символах.
const MaxCommentLength = 2000

type Vote struct {
	ID        uuid.UUID
	ProblemID uuid.UUID
	UserID    uuid.UUID
	Type      valueobject.VoteType
	CreatedAt time.Time
}

func NewVote(problemID, userID uuid.UUID, t valueobject.VoteType) *Vote {
	return &Vote{
		ID:        uuid.New(),
		ProblemID: problemID,
		UserID:    userID,
		Type:      t,
		CreatedAt: time.Now(),
	}
}

type Comment struct {
	ID        uuid.UUID
	ProblemID uuid.UUID
	UserID    uuid.UUID
	Text      string
	CreatedAt time.Time
}

func NewComment(problemID, userID uuid.UUID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "комментарий не может быть пустым")
	}
	if len([]rune(text)) > MaxCommentLength {
		return nil, apperror.New(apperror.ErrCodeValidation, "комментарий слишком длинный")
	}
	return &Comment{
		ID:        uuid.New(),
		ProblemID: problemID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}, nil
}

// TaskCompletion - фотоотчёт о выполнении задания, не больше одного на проблему.
type TaskCompletion struct {
	ID          uuid.UUID
	ProblemID   uuid.UUID
	UserID      uuid.UUID
	BeforePhoto *string
	AfterPhoto  *string
	Description string
	Rating      *int
	CreatedAt   time.Time
}

func NewTaskCompletion(problemID, userID uuid.UUID, beforePhoto, afterPhoto *string, description string, rating *int) (*TaskCompletion, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}
	return &TaskCompletion{
		ID:          uuid.New(),
		ProblemID:   problemID,
		UserID:      userID,
		BeforePhoto: beforePhoto,
		AfterPhoto:  afterPhoto,
		Description: strings.TrimSpace(description),
		Rating:      rating,
		CreatedAt:   time.Now(),
	}, nil
}
