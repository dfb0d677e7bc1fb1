package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nbcassistant/backend/internal/engine"
	"github.com/nbcassistant/backend/internal/model/conversation"
	"github.com/nbcassistant/backend/internal/service/query"
	"github.com/nbcassistant/backend/internal/store"
)

type engineFunc func(ctx context.Context, question, userID string) (string, error)

func (f engineFunc) Run(ctx context.Context, question, userID string) (string, error) {
	return f(ctx, question, userID)
}

type failingStore struct {
	appendErr error
	listErr   error
}

func (s *failingStore) Append(context.Context, conversation.Record) error { return s.appendErr }
func (s *failingStore) ListByUser(context.Context, string) ([]conversation.Record, error) {
	return nil, s.listErr
}

func cannedEngine(output string) engine.Engine {
	return engineFunc(func(context.Context, string, string) (string, error) {
		return output, nil
	})
}

func TestDispatchSuccessAppendsRecord(t *testing.T) {
	st := store.NewMemory()
	svc := query.NewService(cannedEngine("The budget is $500."), st)
	ctx := context.Background()

	output, err := svc.Dispatch(ctx, "user-1", "What is the budget?")
	if err != nil {
		t.Fatalf("Dispatch err: %v", err)
	}
	if output != "The budget is $500." {
		t.Fatalf("unexpected output: %q", output)
	}

	records, err := svc.History(ctx, "user-1")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Question != "What is the budget?" || rec.Answer != "The budget is $500." {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("record missing id or timestamp: %+v", rec)
	}
}

func TestDispatchEmptyQuestion(t *testing.T) {
	st := store.NewMemory()
	svc := query.NewService(cannedEngine("unused"), st)

	for _, question := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Dispatch(context.Background(), "user-1", question); !errors.Is(err, query.ErrEmptyQuestion) {
			t.Fatalf("question %q: expected ErrEmptyQuestion, got %v", question, err)
		}
	}

	records, _ := svc.History(context.Background(), "user-1")
	if len(records) != 0 {
		t.Fatalf("blank question reached the store: %d records", len(records))
	}
}

func TestDispatchEngineFailureSkipsStore(t *testing.T) {
	st := store.NewMemory()
	svc := query.NewService(engineFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("exit status 1")
	}), st)

	_, err := svc.Dispatch(context.Background(), "user-1", "q")
	if !errors.Is(err, query.ErrEngineFailure) {
		t.Fatalf("expected ErrEngineFailure, got %v", err)
	}

	records, _ := svc.History(context.Background(), "user-1")
	if len(records) != 0 {
		t.Fatalf("failed dispatch appended a record")
	}
}

func TestDispatchOutputTooLarge(t *testing.T) {
	svc := query.NewService(engineFunc(func(context.Context, string, string) (string, error) {
		return "", engine.ErrOutputTooLarge
	}), store.NewMemory())

	_, err := svc.Dispatch(context.Background(), "user-1", "q")
	if !errors.Is(err, engine.ErrOutputTooLarge) {
		t.Fatalf("expected ErrOutputTooLarge, got %v", err)
	}
}

func TestDispatchPersistFailureStillReturnsAnswer(t *testing.T) {
	svc := query.NewService(cannedEngine("answer"), &failingStore{appendErr: store.ErrUnavailable})

	output, err := svc.Dispatch(context.Background(), "user-1", "q")
	if err != nil {
		t.Fatalf("Dispatch err: %v", err)
	}
	if output != "answer" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestHistoryIdempotent(t *testing.T) {
	st := store.NewMemory()
	svc := query.NewService(cannedEngine("a"), st)
	ctx := context.Background()

	for _, q := range []string{"one", "two", "three"} {
		if _, err := svc.Dispatch(ctx, "user-1", q); err != nil {
			t.Fatalf("Dispatch err: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	first, err := svc.History(ctx, "user-1")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	second, err := svc.History(ctx, "user-1")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("unexpected lengths: %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("fetch not idempotent at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
	if first[0].Question != "one" || first[2].Question != "three" {
		t.Fatalf("history out of order: %+v", first)
	}
}

func TestHistoryEmptyIsNotNil(t *testing.T) {
	svc := query.NewService(cannedEngine("a"), store.NewMemory())

	records, err := svc.History(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if records == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %d", len(records))
	}
}

func TestHistoryStoreUnavailable(t *testing.T) {
	svc := query.NewService(cannedEngine("a"), &failingStore{listErr: store.ErrUnavailable})

	if _, err := svc.History(context.Background(), "user-1"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
