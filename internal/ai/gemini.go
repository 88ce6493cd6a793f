package ai

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

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/metrics"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
)

// ErrModelUnavailable marks failures where another model may still succeed
// (transport errors, throttling, server errors).
var ErrModelUnavailable = errors.New("generative model unavailable")

const maxErrorBodyLen = 300

type GeminiClientParams struct {
	BaseURL        string
	APIKey         string
	Models         []string
	Timeout        time.Duration
	MetricsManager *metrics.Manager
	// HttpClient is optional, an otelhttp instrumented client is used when nil.
	HttpClient *http.Client
}

// GeminiClient calls the generateContent REST endpoint of the Gemini API.
type GeminiClient struct {
	baseURL        string
	apiKey         string
	models         []string
	httpClient     *http.Client
	metricsManager *metrics.Manager
}

func NewGeminiClient(params GeminiClientParams) (*GeminiClient, error) {
	if len(params.Models) == 0 {
		return nil, errors.New("at least one model is required")
	}
	if params.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   params.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &GeminiClient{
		baseURL:        strings.TrimSuffix(params.BaseURL, "/"),
		apiKey:         params.APIKey,
		models:         params.Models,
		httpClient:     httpClient,
		metricsManager: params.MetricsManager,
	}, nil
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any `json:"responseSchema,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
}

type generateContentRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// text joins the text parts of the first candidate.
func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// GeneratePlan asks the configured models in order for a weekly plan; the next model
// is only tried when the previous one is unavailable.
func (c *GeminiClient) GeneratePlan(ctx context.Context, planRequest PlanRequest) (_ *WeeklyPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ai.gemini.generate-plan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	planRequestJson, err := json.Marshal(planRequest)
	if err != nil {
		return nil, fmt.Errorf("marshal plan request: %w", err)
	}

	req := generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: SystemInstruction}}},
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: string(planRequestJson)}},
		}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   planResponseSchema(),
		},
	}

	var errs []error
	for _, model := range c.models {
		span.SetAttributes(attribute.String("model", model))
		log.Debugf("generating fitness plan with model [%s]", model)

		resp, err := c.generateContent(ctx, model, req)
		if err != nil {
			if errors.Is(err, ErrModelUnavailable) && ctx.Err() == nil {
				log.Warnf("model [%s] unavailable, trying next one: %s", model, err)
				errs = append(errs, err)
				continue
			}
			return nil, err
		}

		raw := resp.text()
		plan := &WeeklyPlan{}
		if err := json.Unmarshal([]byte(raw), plan); err != nil {
			c.metricsManager.CounterAIFailures.WithLabelValues("unparsable").Inc()
			return nil, newUnparsablePlanError(raw, err)
		}
		if err := plan.validate(); err != nil {
			c.metricsManager.CounterAIFailures.WithLabelValues("unparsable").Inc()
			return nil, newUnparsablePlanError(raw, err)
		}
		return plan, nil
	}

	return nil, fmt.Errorf("all models failed: %w", errors.Join(errs...))
}

func (c *GeminiClient) generateContent(ctx context.Context, model string, body generateContentRequest) (*generateContentResponse, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal generate content request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metricsManager.CounterAIFailures.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("%w: http client do: %w", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metricsManager.CounterAIFailures.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("%w: read response: %w", ErrModelUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metricsManager.CounterAIFailures.WithLabelValues("status").Inc()
		statusErr := fmt.Errorf("model [%s] responded %d: %s", model, resp.StatusCode, apiErrorMessage(respBytes))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, statusErr)
		}
		return nil, statusErr
	}

	genResp := &generateContentResponse{}
	if err := json.Unmarshal(respBytes, genResp); err != nil {
		return nil, fmt.Errorf("unmarshal generate content response: %w", err)
	}
	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("prompt blocked: %s", genResp.PromptFeedback.BlockReason)
	}

	return genResp, nil
}

func apiErrorMessage(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	return string(body)
}

// GenerateImage returns the base64 encoded image the model produced for prompt.
func (c *GeminiClient) GenerateImage(ctx context.Context, model, prompt string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ai.gemini.generate-image")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("model", model))

	resp, err := c.generateContent(ctx, model, generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	})
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data, nil
			}
		}
	}
	return "", errors.New("no image data returned")
}
