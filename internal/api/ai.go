package api

import (
	"context"
	"strings"

	"github.com/PrathikReddy560/SpendX/internal/client"
)

// Chat sends a message to the assistant. An empty conversationID starts a new conversation.
func (a *Client) Chat(ctx context.Context, message, conversationID string) (*ChatResponse, error) {
	in := ChatRequest{Message: strings.TrimSpace(message), ConversationID: conversationID}
	if err := Validate(in); err != nil {
		return nil, err
	}
	var resp ChatResponse
	if err := a.do(ctx, client.NewRequest(client.Chat).WithBody(in), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatHistory returns every message in a conversation.
func (a *Client) ChatHistory(ctx context.Context, conversationID string) (*ChatHistory, error) {
	if err := Validate(struct {
		ID string `json:"conversation_id" validate:"required,uuid"`
	}{conversationID}); err != nil {
		return nil, err
	}
	var h ChatHistory
	if err := a.do(ctx, client.NewRequest(client.ChatHistory, conversationID), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Predict returns next month's spending forecast.
func (a *Client) Predict(ctx context.Context) (*Prediction, error) {
	return cached[Prediction](ctx, a, keyPredict, client.NewRequest(client.Predict))
}

// Insights returns the current AI insights.
func (a *Client) Insights(ctx context.Context) (*Insights, error) {
	return cached[Insights](ctx, a, keyInsights, client.NewRequest(client.Insights))
}
