package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentCurator/internal/analysis"
)

// HuggingFaceSummarizer calls a hosted summarization model through the inference API.
type HuggingFaceSummarizer struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ analysis.Summarizer = (*HuggingFaceSummarizer)(nil)

// NewHuggingFaceSummarizer creates a reusable HTTP client. A nil httpClient gets a 30s timeout.
func NewHuggingFaceSummarizer(endpoint, apiKey string, httpClient *http.Client) *HuggingFaceSummarizer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HuggingFaceSummarizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     httpClient,
	}
}

// Name identifies the summarizer inside the registry.
func (c *HuggingFaceSummarizer) Name() string {
	return "huggingface"
}

type summarizeParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type summarizeRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters summarizeParameters `json:"parameters"`
}

type summarizeResult struct {
	SummaryText string `json:"summary_text"`
}

// Summarize requests a deterministic summary within bounds.
// The model counts tokens, so the reply is trimmed to bounds.Max words as well.
func (c *HuggingFaceSummarizer) Summarize(ctx context.Context, text string, bounds analysis.Bounds) (string, error) {
	if c.endpoint == "" {
		return "", errors.New("huggingface inference url is empty")
	}

	payload := summarizeRequest{
		Inputs: text,
		Parameters: summarizeParameters{
			MinLength: bounds.Min,
			MaxLength: bounds.Max,
			DoSample:  false,
		},
	}

	var results []summarizeResult
	if err := c.post(ctx, payload, &results); err != nil {
		return "", err
	}
	if len(results) == 0 || strings.TrimSpace(results[0].SummaryText) == "" {
		return "", errors.New("huggingface returned no summary")
	}

	return analysis.TruncateWords(results[0].SummaryText, bounds.Max), nil
}

func (c *HuggingFaceSummarizer) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if closeErr := resp.Body.Close(); closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
