package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hireflow",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI scoring and generation requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hireflow",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI scoring and generation requests",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements Scorer and QuestionGenerator against the OpenAI
// chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/noah-isme/hireflow-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Score sends one answer with its rubric to OpenAI and parses the 0-10 score.
func (c *OpenAIClient) Score(parent context.Context, input ScoreInput) (ScoreResult, error) {
	ctx, span := c.tracer.Start(parent, "openai.score", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.String("question.category", input.Category),
	))
	defer span.End()

	content, usage, err := c.complete(ctx, "score", scorerSystemPrompt(), buildScorePrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScoreResult{}, err
	}

	result, err := parseScoreResponse(content)
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "score").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScoreResult{}, err
	}

	result.Raw = map[string]interface{}{"usage": usage}

	return result, nil
}

// GenerateQuestions asks OpenAI for a personalized interview question set.
func (c *OpenAIClient) GenerateQuestions(parent context.Context, input QuestionSetInput) ([]GeneratedQuestion, error) {
	ctx, span := c.tracer.Start(parent, "openai.generate_questions", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Int("question.count", input.Count),
	))
	defer span.End()

	content, _, err := c.complete(ctx, "generate", generatorSystemPrompt(), buildGenerationPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	questions, err := parseGenerationResponse(content)
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "generate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return questions, nil
}

func (c *OpenAIClient) complete(ctx context.Context, operation, system, user string) (string, openai.Usage, error) {
	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		return "", openai.Usage{}, fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		return "", openai.Usage{}, fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage, nil
}

func scorerSystemPrompt() string {
	return "You are an experienced technical interviewer scoring one answer against a weighted rubric. " +
		"Respond with a JSON object containing score (0-10), feedback (2-3 sentences for the hiring team), " +
		"and breakdown (object keyed by rubric aspect with a per-aspect score and note)."
}

func buildScorePrompt(input ScoreInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(input.Question)
	builder.WriteString("\n\n## Category\n")
	builder.WriteString(input.Category)
	builder.WriteString("\n\n## Rubric\n")
	for _, criterion := range input.Rubric {
		builder.WriteString(fmt.Sprintf("- %s (weight %.1f): excellent=%s; good=%s; needs work=%s\n",
			criterion.Aspect, criterion.Weight, criterion.Excellent, criterion.Good, criterion.NeedsWork))
	}
	builder.WriteString("\n## Candidate Answer\n")
	builder.WriteString(input.Answer)
	if input.JobContext != "" {
		builder.WriteString("\n\n## Role Context\n")
		builder.WriteString(input.JobContext)
	}
	if input.CandidateBackground != "" {
		builder.WriteString("\n\n## Candidate Background\n")
		builder.WriteString(input.CandidateBackground)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func generatorSystemPrompt() string {
	return "You design technical interview question sets. Respond with a JSON object containing a questions array; " +
		"each item has prompt, category, difficulty (easy|medium|hard), estimated_minutes, and rubric " +
		"(array of {aspect, weight, excellent, good, needs_work}). Weights per question sum to 1."
}

func buildGenerationPrompt(input QuestionSetInput) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Generate %d interview questions.\n\n# Role\n%s\n", input.Count, input.JobTitle))
	if input.JobDescription != "" {
		builder.WriteString("\n## Description\n")
		builder.WriteString(input.JobDescription)
	}
	if len(input.Requirements) > 0 {
		builder.WriteString("\n## Requirements\n")
		for _, requirement := range input.Requirements {
			builder.WriteString("- ")
			builder.WriteString(requirement)
			builder.WriteString("\n")
		}
	}
	if input.CandidateBackground != "" {
		builder.WriteString("\n## Candidate Background\n")
		builder.WriteString(input.CandidateBackground)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseScoreResponse(content string) (ScoreResult, error) {
	type payload struct {
		Score     float64                `json:"score"`
		Feedback  string                 `json:"feedback"`
		Breakdown map[string]interface{} `json:"breakdown"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return ScoreResult{}, fmt.Errorf("parse score json: %w", err)
	}

	if data.Score < 0 {
		data.Score = 0
	}
	if data.Score > 10 {
		data.Score = 10
	}

	return ScoreResult{
		Score:     data.Score,
		Feedback:  data.Feedback,
		Breakdown: data.Breakdown,
	}, nil
}

func parseGenerationResponse(content string) ([]GeneratedQuestion, error) {
	type payload struct {
		Questions []GeneratedQuestion `json:"questions"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse question set json: %w", err)
	}

	if len(data.Questions) == 0 {
		return nil, fmt.Errorf("question set is empty")
	}

	return data.Questions, nil
}
