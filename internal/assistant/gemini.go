package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iwvelando/loan-desk/pkg/constants"
	"go.uber.org/zap"
)

// GeminiConfig configures the generateContent client.
type GeminiConfig struct {
	// Endpoint is the API base URL.
	Endpoint string

	// Model is the model name, e.g. "gemini-2.0-flash".
	Model string

	// APIKey is sent in the x-goog-api-key header and never logged.
	APIKey string

	// Timeout bounds the HTTP client. Zero uses the default.
	Timeout time.Duration
}

// GeminiGateway calls the Gemini generateContent API once per inquiry.
type GeminiGateway struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

var _ Gateway = (*GeminiGateway)(nil)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// NewGeminiGateway validates cfg and returns a gateway.
func NewGeminiGateway(cfg GeminiConfig, logger *zap.Logger) (*GeminiGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &GatewayError{Code: "missing_api_key", Message: "API key is required"}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = constants.DefaultAssistantEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, &GatewayError{Code: "invalid_endpoint", Message: err.Error()}
	}

	model := cfg.Model
	if model == "" {
		model = constants.DefaultAssistantModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultAssistantTimeoutSeconds * time.Second
	}

	return &GeminiGateway{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

// Model returns the configured model name.
func (g *GeminiGateway) Model() string {
	return g.model
}

// SendInquiry performs a single generateContent request. There are no retries.
func (g *GeminiGateway) SendInquiry(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: SystemInstruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
	})
	if err != nil {
		return "", &GatewayError{Code: "marshal_error", Message: "failed to marshal request"}
	}

	endpoint := g.endpoint + "/v1beta/models/" + url.PathEscape(g.model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &GatewayError{Code: "request_error", Message: "failed to create request"}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
			return "", &GatewayError{Code: "timeout", Message: "request timed out"}
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", &GatewayError{Code: "canceled", Message: "request canceled"}
		}
		return "", &GatewayError{Code: "network_error", Message: "request failed"}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxAssistantReplyBytes))
	if err != nil {
		return "", &GatewayError{Code: "read_error", Status: resp.StatusCode, Message: "failed to read response"}
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Debug("assistant gateway returned non-200 status",
			zap.String("op", "assistant.gemini.send"),
			zap.String("model", g.model),
			zap.Int("status", resp.StatusCode))
		return "", &GatewayError{Code: "http_" + statusBucket(resp.StatusCode), Status: resp.StatusCode, Message: "non-200 status"}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", &GatewayError{Code: "parse_error", Status: resp.StatusCode, Message: "failed to parse response"}
	}

	reply := extractText(parsed)
	if reply == "" {
		return "", &GatewayError{Code: "empty_response", Status: resp.StatusCode, Message: "no text in response"}
	}
	return reply, nil
}

func extractText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
