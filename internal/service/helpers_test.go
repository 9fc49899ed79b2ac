package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/docreview/docreview/internal/config"
)

// stubCompletion is a scriptable completion backend. When failWhen is
// set, calls whose system prompt contains that substring fail.
type stubCompletion struct {
	mu       sync.Mutex
	reply    string
	err      error
	failWhen string
	calls    int
}

func (s *stubCompletion) Complete(_ context.Context, _, systemPrompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.failWhen != "" && strings.Contains(systemPrompt, s.failWhen) {
		return "", s.err
	}
	if s.failWhen == "" && s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubCompletion) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubHub records broadcast events.
type stubHub struct {
	mu     sync.Mutex
	events []string
}

func (h *stubHub) BroadcastEvent(_ context.Context, eventType string, _ any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, eventType)
}

func testPipelineConfig() config.Pipeline {
	return config.Pipeline{
		Workers:          2,
		TaskTimeout:      5 * time.Second,
		ReviewerCost:     60 * time.Second,
		QuickDocChars:    500,
		DeepDocChars:     8000,
		FindingBonusOver: 10,
	}
}
