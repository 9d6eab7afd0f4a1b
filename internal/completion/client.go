// Package completion provides the client for the external completion
// collaborator that produces utterances for generated participants.
//
// The engine consumes the service through the narrow Client interface;
// HTTPClient speaks to any OpenAI-compatible chat-completions endpoint.
// The service is stateless per call, so one client may be shared across
// participants and across sessions.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/errors"
)

// Message is one entry of conversational context.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Request describes a single completion call.
type Request struct {
	// Model selects the completion model; empty uses the client default.
	Model string
	// System is the role instruction for the speaking participant.
	System string
	// Messages is the rendered transcript context, oldest first.
	Messages []Message
}

// Client turns a role instruction plus transcript context into the next
// utterance. Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// HTTPClient calls an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	baseURL      string
	apiKey       string
	defaultModel string
	hc           *http.Client
}

// NewHTTPClient builds an HTTPClient from configuration. The API key is
// read from the environment variable named by cfg.APIKeyEnv.
func NewHTTPClient(cfg config.CompletionConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       os.Getenv(cfg.APIKeyEnv),
		defaultModel: cfg.AgentModel,
		hc:           &http.Client{Timeout: cfg.Timeout()},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete performs one chat-completion call. Timeouts map to
// CollaboratorTimeout; every other failure maps to CollaboratorUnavailable.
// The call is never retried here; retry policy lives at the attempt level.
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	msgs := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, Message{Role: "system", Content: req.System})
	}
	msgs = append(msgs, req.Messages...)

	body, err := json.Marshal(chatRequest{Model: model, Messages: msgs})
	if err != nil {
		return "", errors.NewCollaboratorError(errors.CollaboratorUnavailable, "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.NewCollaboratorError(errors.CollaboratorUnavailable, "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		kind := errors.CollaboratorUnavailable
		if isTimeout(ctx, err) {
			kind = errors.CollaboratorTimeout
		}
		return "", errors.NewCollaboratorError(kind, "chat completion", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.NewCollaboratorError(errors.CollaboratorUnavailable, "chat completion",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.NewCollaboratorError(errors.CollaboratorUnavailable, "decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.NewCollaboratorError(errors.CollaboratorUnavailable, "chat completion",
			errors.New("response has no choices"))
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// isTimeout reports whether err represents deadline expiry, either on the
// request context or inside the HTTP client.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	type timeouter interface{ Timeout() bool }
	var te timeouter
	return errors.As(err, &te) && te.Timeout()
}
