// Package enginetest provides chat models for tests.
package enginetest

import (
	"context"
	"sync"

	"github.com/habiliai/spoar/engine"
	"github.com/habiliai/spoar/errors"
)

// Reply is one scripted response. A non-nil Err fails the call.
type Reply struct {
	Text string
	Err  error
}

// Scripted replays replies in order and records every request. When the
// script runs out it returns an error.
type Scripted struct {
	mu       sync.Mutex
	replies  []Reply
	requests []engine.ChatRequest
}

var (
	_ engine.ChatModel = (*Scripted)(nil)
)

func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Texts is a shorthand for successful replies.
func Texts(texts ...string) *Scripted {
	s := &Scripted{}
	for _, t := range texts {
		s.replies = append(s.replies, Reply{Text: t})
	}
	return s
}

func (s *Scripted) Push(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

func (s *Scripted) Complete(ctx context.Context, req engine.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}

	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.Text, r.Err
}

func (s *Scripted) Requests() []engine.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.ChatRequest(nil), s.requests...)
}

// Last returns the most recent request.
func (s *Scripted) Last() engine.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return engine.ChatRequest{}
	}
	return s.requests[len(s.requests)-1]
}
