// Package engine adapts chat completion providers to the single call the
// agent and the assistant need.
package engine

import (
	"context"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type (
	Message struct {
		Role    Role   `json:"role"`
		Content string `json:"content"`
	}

	ChatRequest struct {
		Messages []Message
		// Temperature is passed through when set.
		Temperature *float64
		// MaxTokens of 0 leaves the provider default.
		MaxTokens int
	}

	// ChatModel completes a conversation and returns the assistant's text.
	ChatModel interface {
		Complete(ctx context.Context, req ChatRequest) (string, error)
	}

	// ChatFunc adapts a function to ChatModel.
	ChatFunc func(ctx context.Context, req ChatRequest) (string, error)
)

func (f ChatFunc) Complete(ctx context.Context, req ChatRequest) (string, error) {
	return f(ctx, req)
}

func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

func Temperature(t float64) *float64 {
	return &t
}
