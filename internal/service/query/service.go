// Package query implements authenticated question dispatch and history
// retrieval on top of the answer engine and the conversation store.
package query

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nbcassistant/backend/internal/engine"
	"github.com/nbcassistant/backend/internal/model/conversation"
	"github.com/nbcassistant/backend/internal/store"
)

var (
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrEngineFailure = errors.New("answer engine failure")
)

// Service owns the dispatch and history paths. Each call is independent;
// the only shared state lives behind the store.
type Service struct {
	engine engine.Engine
	store  store.Store
	now    func() time.Time
}

func NewService(eng engine.Engine, st store.Store) *Service {
	return &Service{engine: eng, store: st, now: time.Now}
}

// Dispatch forwards a question to the answer engine and returns its
// output verbatim. On success the question/answer pair is appended to
// the store; a failed append is logged and swallowed, since discarding a
// synthesized answer the user is waiting on hurts more than losing one
// history entry.
func (s *Service) Dispatch(ctx context.Context, userID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	output, err := s.engine.Run(ctx, question, userID)
	if err != nil {
		if errors.Is(err, engine.ErrOutputTooLarge) {
			return "", err
		}
		log.Printf("[dispatch] engine failure for user %s: %v", userID, err)
		return "", fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}

	rec := conversation.Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Question:  question,
		Answer:    output,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Append(ctx, rec); err != nil {
		log.Printf("[dispatch] history append failed for user %s: %v", userID, err)
	}

	return output, nil
}

// History returns the user's persisted records ascending by creation
// time. The result is never nil so an empty history serializes as [].
func (s *Service) History(ctx context.Context, userID string) ([]conversation.Record, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if records == nil {
		records = []conversation.Record{}
	}
	return records, nil
}
