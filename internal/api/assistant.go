package api

import (
	"context"
	"net/http"
	"net/url"
)

type feedbackResponse struct {
	Feedback string `json:"feedback"`
}

// AIFeedback returns the AI review of the user's recent work as raw
// markdown.
func (c *Client) AIFeedback(ctx context.Context, userID string) (string, error) {
	var resp feedbackResponse
	if err := c.do(ctx, http.MethodPost, "/task/ai-feedback/"+url.PathEscape(userID), struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Feedback, nil
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Message string `json:"message"`
}

// Ask sends a question to the study assistant. An empty answer means the
// assistant did not understand the question.
func (c *Client) Ask(ctx context.Context, userID, question string) (string, error) {
	var resp askResponse
	if err := c.do(ctx, http.MethodPost, "/task/chatbot-ask/"+url.PathEscape(userID), askRequest{Question: question}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
