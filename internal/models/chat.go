package models

import (
	"time"
)

// ChatMessage represents one user question and the assistant's reply
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Context   string    `json:"context_type"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest represents the request body for the chat endpoint
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse represents the reply returned to the client
type ChatResponse struct {
	Reply       string `json:"reply"`
	ContextType string `json:"context_type"`
}
