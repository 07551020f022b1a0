package ai

import "context"

// RubricCriterion is one weighted aspect guiding the evaluation of an answer.
type RubricCriterion struct {
	Aspect    string  `json:"aspect"`
	Weight    float64 `json:"weight"`
	Excellent string  `json:"excellent"`
	Good      string  `json:"good"`
	NeedsWork string  `json:"needs_work"`
}

// ScoreInput contains the artefacts needed to score one interview answer.
type ScoreInput struct {
	Question            string
	Category            string
	Rubric              []RubricCriterion
	Answer              string
	JobContext          string
	CandidateBackground string
}

// ScoreResult is the structured evaluation returned for one answer.
type ScoreResult struct {
	Score     float64                `json:"score"`
	Feedback  string                 `json:"feedback"`
	Breakdown map[string]interface{} `json:"breakdown,omitempty"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
}

// Scorer describes an AI model capable of scoring a free-text answer against
// a rubric on a 0-10 scale.
type Scorer interface {
	Score(ctx context.Context, input ScoreInput) (ScoreResult, error)
}

// QuestionSetInput seeds personalized question generation for one interview.
type QuestionSetInput struct {
	JobTitle            string
	JobDescription      string
	Requirements        []string
	CandidateBackground string
	Count               int
}

// GeneratedQuestion is one AI-produced interview question with its rubric.
type GeneratedQuestion struct {
	Prompt           string            `json:"prompt"`
	Category         string            `json:"category"`
	Difficulty       string            `json:"difficulty"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	Rubric           []RubricCriterion `json:"rubric"`
}

// QuestionGenerator produces a personalized question set for an interview.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, input QuestionSetInput) ([]GeneratedQuestion, error)
}
