// internal/ai/gemini.go

// Package ai calls the Gemini generateContent REST API for stage
// summaries, outreach drafts, and logo previews. Every text call has a
// deterministic fallback so a dead API never blocks stage progression.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marvetti-onboarding/internal/common/config"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/httpx"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/common/metrics"
)

// Deterministic fallbacks for text generation.
const (
	FallbackSummary      = "<p>Summary sync delayed. Data saved locally.</p>"
	EmptySummaryText     = "Summary generated. Refreshing dashboard..."
	draftFallbackFormat  = "Hi %s, we've received your %s details! Next step: Stage 2."
	emptyDraftTextFormat = "Hi %s, we've received your %s details! Your dashboard is updated. Next step: Stage 2 - Logo Creation. Chat soon!"
)

// FallbackDraft builds the deterministic outreach draft used when the
// API call fails outright.
func FallbackDraft(clientName, stageName string) string {
	return fmt.Sprintf(draftFallbackFormat, clientName, stageName)
}

// GeneratedImage is a decoded logo preview.
type GeneratedImage struct {
	MimeType string
	Data     []byte
}

// DataURI renders the image the way the dashboard embeds it.
func (g *GeneratedImage) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", g.MimeType, base64.StdEncoding.EncodeToString(g.Data))
}

// Client is a thin wrapper over the generateContent endpoint.
type Client struct {
	cfg    config.GeminiConfig
	http   *httpx.Client
	logger logger.Logger
}

func NewClient(cfg config.GeminiConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		// No transport timeout, per-call deadlines come from context.
		http:   httpx.NewClient(0),
		logger: log.WithFields(map[string]interface{}{"component": "gemini"}),
	}
}

// ==========================
// PUBLIC OPERATIONS
// ==========================

// StageSummary generates the HTML execution report for a completed
// stage. Failures degrade to FallbackSummary and are logged only.
func (c *Client) StageSummary(ctx context.Context, stageName string, payload interface{}) string {
	start := time.Now()
	text, err := c.generateText(ctx, c.cfg.TextModel, buildSummaryPrompt(stageName, payload))
	metrics.AIRequestDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("Stage summary degraded to fallback", map[string]interface{}{
			"stage_name": stageName,
			"error":      err.Error(),
		})
		metrics.AIArtifactsGenerated.WithLabelValues("summary", "fallback").Inc()
		return FallbackSummary
	}
	if strings.TrimSpace(text) == "" {
		text = EmptySummaryText
	}

	metrics.AIArtifactsGenerated.WithLabelValues("summary", "generated").Inc()
	return text
}

// WhatsAppDraft generates the outbound message draft for a completed
// stage. Failures degrade to the deterministic fallback.
func (c *Client) WhatsAppDraft(ctx context.Context, stageName, clientName string) string {
	start := time.Now()
	text, err := c.generateText(ctx, c.cfg.TextModel, buildDraftPrompt(stageName, clientName))
	metrics.AIRequestDuration.WithLabelValues("draft").Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("Outreach draft degraded to fallback", map[string]interface{}{
			"stage_name": stageName,
			"error":      err.Error(),
		})
		metrics.AIArtifactsGenerated.WithLabelValues("draft", "fallback").Inc()
		return FallbackDraft(clientName, stageName)
	}
	if strings.TrimSpace(text) == "" {
		text = fmt.Sprintf(emptyDraftTextFormat, clientName, stageName)
	}

	metrics.AIArtifactsGenerated.WithLabelValues("draft", "generated").Inc()
	return text
}

// GenerateLogo produces a square logo preview. A nil image with nil
// error means the model returned no picture, callers show "no preview".
func (c *Client) GenerateLogo(ctx context.Context, businessName, niche, instructions string) (*GeneratedImage, error) {
	start := time.Now()
	defer func() {
		metrics.AIRequestDuration.WithLabelValues("logo").Observe(time.Since(start).Seconds())
	}()

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: buildLogoPrompt(businessName, niche, instructions)}},
		}},
		GenerationConfig: &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: "1:1"},
		},
	}

	resp, err := c.call(ctx, c.cfg.ImageModel, req)
	if err != nil {
		metrics.AIArtifactsGenerated.WithLabelValues("logo", "failed").Inc()
		return nil, err
	}

	img := resp.firstImage()
	if img == nil {
		metrics.AIArtifactsGenerated.WithLabelValues("logo", "empty").Inc()
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		metrics.AIArtifactsGenerated.WithLabelValues("logo", "failed").Inc()
		return nil, commonerrors.NewLogoGenerationFailedError(fmt.Errorf("decode image data: %w", err))
	}

	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}

	metrics.AIArtifactsGenerated.WithLabelValues("logo", "generated").Inc()
	return &GeneratedImage{MimeType: mime, Data: data}, nil
}

// ==========================
// TRANSPORT
// ==========================

func (c *Client) generateText(ctx context.Context, model, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 2048,
		},
	}

	resp, err := c.call(ctx, model, req)
	if err != nil {
		return "", err
	}
	return resp.firstText(), nil
}

func (c *Client) call(ctx context.Context, model string, payload geminiRequest) (*geminiResponse, error) {
	timeout := time.Duration(c.cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), model, c.cfg.APIKey)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, commonerrors.NewGeminiTimeoutError()
			}
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if reqErr != nil {
			return nil, fmt.Errorf("build request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.http.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, commonerrors.NewGeminiTimeoutError()
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewGeminiTimeoutError()
		}
		return nil, fmt.Errorf("generateContent: %w", lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("generateContent: no successful response after retries")
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("api error %d: %s", out.Error.Code, out.Error.Message)
	}

	return &out, nil
}
