package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/scanwise/invoice-extractor/internal/pipeline"
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

// Gemini sends OCR text plus the extraction prompt to the Gemini API and
// parses the structured response. Every call is bounded by a timeout and
// retried at most once, immediately, on a transport failure.
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  logger.Logger
}

func NewGemini(ctx context.Context, apiKey, modelName string, timeout time.Duration, log logger.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	// Low temperature keeps field extraction close to the source text.
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(2048)

	return &Gemini{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  log,
	}, nil
}

// Extract runs the invoice prompt over the extracted text and returns the
// raw, schema-validated JSON payload.
func (g *Gemini) Extract(ctx context.Context, text string) (map[string]any, error) {
	raw, err := g.generate(ctx, BuildPrompt(text))
	if err != nil {
		return nil, err
	}

	g.logger.Info("Gemini returned response",
		logger.Int("chars", len(raw)),
	)
	return ParseRecord(raw)
}

// Ping performs a minimal round trip; used by the reachability endpoint.
func (g *Gemini) Ping(ctx context.Context) (string, error) {
	return g.generate(ctx, `Hello, respond with: {"status": "working"}`)
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil && ctx.Err() == nil {
		// One immediate retry. Transient transport failures often clear on
		// the second attempt; auth and quota errors just fail again.
		g.logger.Warn("Gemini call failed, retrying once", logger.Error(err))
		resp, err = g.model.GenerateContent(ctx, genai.Text(prompt))
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", pipeline.NewStageError(pipeline.StageAI, pipeline.ReasonTimeout, err)
		}
		return "", pipeline.NewStageError(pipeline.StageAI, pipeline.ReasonServiceUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", pipeline.NewStageError(pipeline.StageAI, pipeline.ReasonServiceUnavailable,
			fmt.Errorf("no candidates in response"))
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
