package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Provider generates NPC replies.
type Provider interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	Status() Status
}

// Status is what the health endpoint may reveal about a provider: booleans
// and the model name, never the credential.
type Status struct {
	HasKey  bool   `json:"hasKey"`
	Model   string `json:"model"`
	Org     bool   `json:"org"`
	Project bool   `json:"project"`
}

const (
	DefaultModel    = "gpt-4o-mini"
	DefaultEndpoint = "https://api.openai.com/v1/responses"
	DefaultTimeout  = 20 * time.Second

	maxErrorBody = 16 * 1024
)

// OpenAIConfig configures the Responses API client.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	OrgID     string
	ProjectID string
	Endpoint  string
	Timeout   time.Duration
}

// OpenAIConfigFromEnv reads OPENAI_API_KEY, OPENAI_MODEL, OPENAI_ORG_ID, and
// OPENAI_PROJECT_ID.
func OpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:     strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		OrgID:     strings.TrimSpace(os.Getenv("OPENAI_ORG_ID")),
		ProjectID: strings.TrimSpace(os.Getenv("OPENAI_PROJECT_ID")),
	}
}

// OpenAIProvider posts transcripts to the OpenAI Responses API.
type OpenAIProvider struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIProvider fills defaults for unset fields.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &OpenAIProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *OpenAIProvider) Status() Status {
	return Status{
		HasKey:  p.cfg.APIKey != "",
		Model:   p.cfg.Model,
		Org:     p.cfg.OrgID != "",
		Project: p.cfg.ProjectID != "",
	}
}

type responsesRequest struct {
	Model           string  `json:"model"`
	Input           string  `json:"input"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	Temperature     float64 `json:"temperature"`
}

type responsesReply struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// text prefers output_text and falls back to the first content part.
func (r responsesReply) text() string {
	if r.OutputText != "" {
		return r.OutputText
	}
	if len(r.Output) > 0 && len(r.Output[0].Content) > 0 {
		return r.Output[0].Content[0].Text
	}
	return ""
}

func (p *OpenAIProvider) Generate(ctx context.Context, pr Prompt) (string, error) {
	if p.cfg.APIKey == "" {
		return "", ErrMissingCredential
	}
	buf, err := json.Marshal(responsesRequest{
		Model:           p.cfg.Model,
		Input:           pr.Input,
		MaxOutputTokens: pr.MaxOutputTokens,
		Temperature:     pr.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.OrgID != "" {
		req.Header.Set("OpenAI-Organization", p.cfg.OrgID)
	}
	if p.cfg.ProjectID != "" {
		req.Header.Set("OpenAI-Project", p.cfg.ProjectID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("responses api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("responses api: status=%d body=%s", resp.StatusCode, p.redact(strings.TrimSpace(string(body))))
	}
	var out responsesReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("responses api: decoding reply: %w", err)
	}
	return out.text(), nil
}

// redact strips the API key from upstream error text before it is logged.
func (p *OpenAIProvider) redact(s string) string {
	if p.cfg.APIKey == "" {
		return s
	}
	return strings.ReplaceAll(s, p.cfg.APIKey, "[redacted]")
}
