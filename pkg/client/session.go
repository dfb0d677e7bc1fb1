// Package client is the chat session controller: it holds the bearer
// token, drives the ask endpoints, and maintains the optimistic message
// log that the timeline assembler renders.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/nbcassistant/backend/internal/model/conversation"
	"github.com/nbcassistant/backend/internal/timeline"
)

var ErrNotAuthenticated = errors.New("session has no bearer token")

// Session orchestrates one user's conversation view. Submissions append
// to the optimistic log in completion order; Refresh replaces the
// persisted snapshot and prunes optimistic messages the server now
// confirms.
type Session struct {
	baseURL string
	httpc   *http.Client
	asm     *timeline.Assembler

	mu         sync.Mutex
	token      string
	userID     string
	persisted  []conversation.Record
	optimistic []conversation.Message
}

// New builds a session against baseURL (e.g. "http://localhost:8080").
// The HTTP client carries no timeout: dispatch latency is bounded by the
// server's engine deadline, not by the caller.
func New(baseURL string, loc *time.Location) *Session {
	return &Session{
		baseURL: baseURL,
		httpc:   &http.Client{},
		asm:     timeline.NewAssembler(loc),
	}
}

// SetToken installs an externally obtained bearer token.
func (s *Session) SetToken(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
}

// UserID returns the authenticated user id, empty before login.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Login exchanges credentials for a bearer token.
func (s *Session) Login(ctx context.Context, email, password string) error {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/login", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		UserID  string `json:"user_id"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		if body.Error != "" {
			return fmt.Errorf("login failed: %s", body.Error)
		}
		return fmt.Errorf("login failed: status %d", resp.StatusCode)
	}

	s.SetToken(body.Token, body.UserID)
	return nil
}

// Refresh replaces the persisted snapshot from the server and prunes
// optimistic messages that now have a persisted counterpart.
func (s *Session) Refresh(ctx context.Context) error {
	token := s.currentToken()
	if token == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/ask", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("history request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("history request: %s", errorMessage(resp))
	}

	var body struct {
		Queries []wireRecord `json:"queries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode history response: %w", err)
	}

	records := make([]conversation.Record, 0, len(body.Queries))
	for _, q := range body.Queries {
		records = append(records, q.toRecord())
	}

	s.mu.Lock()
	s.persisted = records
	s.optimistic = pruneConfirmed(s.optimistic, records)
	s.mu.Unlock()
	return nil
}

// Submit renders the question immediately and dispatches it. The
// assistant reply (or a visibly marked error string) is appended when
// the call completes, so concurrent submissions land in completion
// order. The returned error mirrors what was rendered.
func (s *Session) Submit(ctx context.Context, question string) error {
	token := s.currentToken()
	if token == "" {
		return ErrNotAuthenticated
	}

	s.appendOptimistic(conversation.Message{
		Role:      conversation.RoleUser,
		Content:   question,
		Timestamp: time.Now(),
	})

	output, err := s.dispatch(ctx, token, question)
	content := output
	if err != nil {
		content = "⚠️ Error: " + err.Error()
	}

	s.appendOptimistic(conversation.Message{
		Role:      conversation.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	})
	return err
}

// Timeline assembles the current view: persisted history first, then
// unconfirmed optimistic messages, with day separators.
func (s *Session) Timeline() []timeline.Entry {
	s.mu.Lock()
	persisted := make([]conversation.Record, len(s.persisted))
	copy(persisted, s.persisted)
	optimistic := make([]conversation.Message, len(s.optimistic))
	copy(optimistic, s.optimistic)
	s.mu.Unlock()

	return s.asm.Assemble(persisted, optimistic)
}

func (s *Session) dispatch(ctx context.Context, token, question string) (string, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/ask", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Output string `json:"output"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode ask response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if body.Error != "" {
			return "", errors.New(body.Error)
		}
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if body.Output == "" {
		return "No response", nil
	}
	return body.Output, nil
}

func (s *Session) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) appendOptimistic(msg conversation.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.optimistic = append(s.optimistic, msg)
}

// pruneConfirmed drops optimistic messages whose content the persisted
// log now carries: user turns matched against questions, assistant turns
// against answers, each persisted row consumed at most once.
func pruneConfirmed(optimistic []conversation.Message, persisted []conversation.Record) []conversation.Message {
	questions := make(map[string]int, len(persisted))
	answers := make(map[string]int, len(persisted))
	for _, rec := range persisted {
		questions[rec.Question]++
		answers[rec.Answer]++
	}

	kept := optimistic[:0]
	for _, msg := range optimistic {
		var pool map[string]int
		if msg.Role == conversation.RoleUser {
			pool = questions
		} else {
			pool = answers
		}
		if pool[msg.Content] > 0 {
			pool[msg.Content]--
			continue
		}
		kept = append(kept, msg)
	}
	return kept
}

type wireRecord struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

// toRecord parses the wire timestamp tolerantly: a malformed value keeps
// the zero time so the renderer can show its sentinel.
func (w wireRecord) toRecord() conversation.Record {
	rec := conversation.Record{
		ID:       w.ID,
		Question: w.Question,
		Answer:   w.Answer,
	}
	if ts, err := time.Parse(time.RFC3339Nano, w.CreatedAt); err == nil {
		rec.CreatedAt = ts
	} else if ts, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
		rec.CreatedAt = ts
	}
	return rec
}

func errorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
