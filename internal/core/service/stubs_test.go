package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// stubIssuer hands out "tok:<userID>:<n>" tokens.
type stubIssuer struct {
	mu       sync.Mutex
	n        int
	issueErr error
}

func (s *stubIssuer) Issue(userID string) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("tok:%s:%d", userID, s.n), nil
}

func (s *stubIssuer) Verify(token string) (string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "tok" {
		return "", errors.New("malformed token")
	}
	return parts[1], nil
}

type stubLimiter struct {
	allowed  bool
	allowErr error
	failures []string
	resets   []string
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	return l.allowed, l.allowErr
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures = append(l.failures, email)
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	l.resets = append(l.resets, email)
	return nil
}

type recordingPublisher struct {
	events []domain.SessionEvent
}

func (p *recordingPublisher) Publish(e domain.SessionEvent) {
	p.events = append(p.events, e)
}

func (p *recordingPublisher) kinds() []domain.SessionEventKind {
	out := make([]domain.SessionEventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}
