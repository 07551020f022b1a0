package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
	"github.com/noah-isme/hireflow-go-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryInterviewRepo struct {
	mu         sync.Mutex
	interviews map[uint]models.Interview
	candidates *memoryCandidateRepo
	jobs       *memoryJobRepo
	nextID     uint
}

func newMemoryInterviewRepo(candidates *memoryCandidateRepo, jobs *memoryJobRepo) *memoryInterviewRepo {
	return &memoryInterviewRepo{
		interviews: make(map[uint]models.Interview),
		candidates: candidates,
		jobs:       jobs,
		nextID:     1,
	}
}

func (m *memoryInterviewRepo) hydrate(interview models.Interview) models.Interview {
	if m.candidates != nil {
		if candidate, err := m.candidates.GetByID(context.Background(), interview.CandidateID); err == nil {
			interview.Candidate = candidate
		}
	}
	if m.jobs != nil {
		if job, err := m.jobs.GetByID(context.Background(), interview.JobID); err == nil {
			interview.Job = job
		}
	}
	return interview
}

func (m *memoryInterviewRepo) Create(_ context.Context, interview *models.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	interview.ID = m.nextID
	interview.CreatedAt = time.Now()
	interview.UpdatedAt = time.Now()
	m.interviews[m.nextID] = *interview
	m.nextID++
	return nil
}

func (m *memoryInterviewRepo) GetByID(_ context.Context, id uint) (models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	interview, ok := m.interviews[id]
	if !ok {
		return models.Interview{}, gorm.ErrRecordNotFound
	}
	return m.hydrate(interview), nil
}

func (m *memoryInterviewRepo) GetByToken(_ context.Context, token string) (models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, interview := range m.interviews {
		if interview.AccessToken == token {
			return m.hydrate(interview), nil
		}
	}
	return models.Interview{}, gorm.ErrRecordNotFound
}

func (m *memoryInterviewRepo) GetByIDAndToken(_ context.Context, id uint, token string) (models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	interview, ok := m.interviews[id]
	if !ok || interview.AccessToken != token {
		return models.Interview{}, gorm.ErrRecordNotFound
	}
	return m.hydrate(interview), nil
}

func (m *memoryInterviewRepo) FindActive(_ context.Context, candidateID, jobID uint) (models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := map[string]struct{}{
		models.InterviewStatusPending:    {},
		models.InterviewStatusScheduled:  {},
		models.InterviewStatusReady:      {},
		models.InterviewStatusInProgress: {},
	}
	for _, interview := range m.interviews {
		if interview.CandidateID != candidateID || interview.JobID != jobID {
			continue
		}
		if _, ok := active[interview.Status]; ok {
			return interview, nil
		}
	}
	return models.Interview{}, gorm.ErrRecordNotFound
}

func (m *memoryInterviewRepo) List(_ context.Context, filter repository.InterviewFilter) ([]models.Interview, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Interview, 0, len(m.interviews))
	for _, interview := range m.interviews {
		if filter.CandidateID != nil && interview.CandidateID != *filter.CandidateID {
			continue
		}
		if filter.JobID != nil && interview.JobID != *filter.JobID {
			continue
		}
		if filter.Status != nil && interview.Status != *filter.Status {
			continue
		}
		results = append(results, m.hydrate(interview))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, int64(len(results)), nil
}

func (m *memoryInterviewRepo) Update(_ context.Context, interview *models.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.interviews[interview.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	interview.UpdatedAt = time.Now()
	stored := *interview
	stored.Candidate = models.Candidate{}
	stored.Job = models.Job{}
	m.interviews[interview.ID] = stored
	return nil
}

func (m *memoryInterviewRepo) UpdateIfStatus(_ context.Context, id uint, expected string, fields map[string]interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	interview, ok := m.interviews[id]
	if !ok || interview.Status != expected {
		return 0, nil
	}
	applyInterviewFields(&interview, fields)
	interview.UpdatedAt = time.Now()
	m.interviews[id] = interview
	return 1, nil
}

func (m *memoryInterviewRepo) FindDue(_ context.Context, status, timeColumn string, cutoff time.Time, neverStarted bool) ([]repository.SweepCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []repository.SweepCandidate
	for _, interview := range m.interviews {
		if interview.Status != status {
			continue
		}
		if !interviewDue(interview, timeColumn, cutoff, neverStarted) {
			continue
		}
		due = append(due, repository.SweepCandidate{ID: interview.ID, CandidateID: interview.CandidateID})
	}
	return due, nil
}

func (m *memoryInterviewRepo) TransitionDue(_ context.Context, from []string, to, timeColumn string, cutoff time.Time, neverStarted bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fromSet := make(map[string]struct{}, len(from))
	for _, status := range from {
		fromSet[status] = struct{}{}
	}

	var affected int64
	for id, interview := range m.interviews {
		if _, ok := fromSet[interview.Status]; !ok {
			continue
		}
		if !interviewDue(interview, timeColumn, cutoff, neverStarted) {
			continue
		}
		interview.Status = to
		m.interviews[id] = interview
		affected++
	}
	return affected, nil
}

func (m *memoryInterviewRepo) CountByStatus(_ context.Context, jobID uint) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, interview := range m.interviews {
		if interview.JobID == jobID {
			counts[interview.Status]++
		}
	}
	return counts, nil
}

func interviewDue(interview models.Interview, timeColumn string, cutoff time.Time, neverStarted bool) bool {
	if neverStarted && interview.StartedAt != nil {
		return false
	}

	var value *time.Time
	switch timeColumn {
	case "scheduled_at":
		value = interview.ScheduledAt
	case "expires_at":
		value = interview.ExpiresAt
	case "updated_at":
		v := interview.UpdatedAt
		value = &v
	}
	return value != nil && !value.After(cutoff)
}

func applyInterviewFields(interview *models.Interview, fields map[string]interface{}) {
	for key, raw := range fields {
		switch key {
		case "status":
			interview.Status = raw.(string)
		case "scheduled_at":
			v := raw.(time.Time)
			interview.ScheduledAt = &v
		case "expires_at":
			v := raw.(time.Time)
			interview.ExpiresAt = &v
		case "started_at":
			v := raw.(time.Time)
			interview.StartedAt = &v
		case "completed_at":
			v := raw.(time.Time)
			interview.CompletedAt = &v
		case "overall_score":
			v := raw.(int)
			interview.OverallScore = &v
		case "recommendation":
			interview.Recommendation = raw.(string)
		case "summary":
			interview.Summary = raw.(string)
		case "strengths":
			interview.Strengths = raw.(datatypes.JSONSlice[string])
		case "concerns":
			interview.Concerns = raw.(datatypes.JSONSlice[string])
		case "questions_answered":
			switch v := raw.(type) {
			case int:
				interview.QuestionsAnswered = v
			case int64:
				interview.QuestionsAnswered = int(v)
			}
		}
	}
}

type memoryQuestionRepo struct {
	mu        sync.Mutex
	questions map[uint]models.Question
	nextID    uint
}

func newMemoryQuestionRepo() *memoryQuestionRepo {
	return &memoryQuestionRepo{questions: make(map[uint]models.Question), nextID: 1}
}

func (m *memoryQuestionRepo) BatchCreate(_ context.Context, questions []models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range questions {
		questions[i].ID = m.nextID
		m.questions[m.nextID] = questions[i]
		m.nextID++
	}
	return nil
}

func (m *memoryQuestionRepo) ListByInterview(_ context.Context, interviewID uint) ([]models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []models.Question
	for _, question := range m.questions {
		if question.InterviewID == interviewID {
			results = append(results, question)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Position < results[j].Position })
	return results, nil
}

func (m *memoryQuestionRepo) GetForInterview(_ context.Context, id, interviewID uint) (models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok || question.InterviewID != interviewID {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (m *memoryQuestionRepo) Update(_ context.Context, question *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.questions[question.ID] = *question
	return nil
}

func (m *memoryQuestionRepo) CountAnswered(_ context.Context, interviewID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, question := range m.questions {
		if question.InterviewID == interviewID && question.CandidateAnswer != "" {
			total++
		}
	}
	return total, nil
}

type memoryCandidateRepo struct {
	mu         sync.Mutex
	candidates map[uint]models.Candidate
}

func newMemoryCandidateRepo(candidates ...models.Candidate) *memoryCandidateRepo {
	repo := &memoryCandidateRepo{candidates: make(map[uint]models.Candidate)}
	for _, candidate := range candidates {
		repo.candidates[candidate.ID] = candidate
	}
	return repo
}

func (m *memoryCandidateRepo) GetByID(_ context.Context, id uint) (models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	candidate, ok := m.candidates[id]
	if !ok {
		return models.Candidate{}, gorm.ErrRecordNotFound
	}
	return candidate, nil
}

func (m *memoryCandidateRepo) Update(_ context.Context, candidate *models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[candidate.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.candidates[candidate.ID] = *candidate
	return nil
}

type memoryJobRepo struct {
	jobs map[uint]models.Job
}

func newMemoryJobRepo(jobs ...models.Job) *memoryJobRepo {
	repo := &memoryJobRepo{jobs: make(map[uint]models.Job)}
	for _, job := range jobs {
		repo.jobs[job.ID] = job
	}
	return repo
}

func (m *memoryJobRepo) GetByID(_ context.Context, id uint) (models.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return models.Job{}, gorm.ErrRecordNotFound
	}
	return job, nil
}

type recorderStub struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (r *recorderStub) Record(_ context.Context, entry ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recorderStub) BatchRecord(_ context.Context, entries []ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *recorderStub) typesSeen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		types = append(types, entry.Type)
	}
	return types
}

type outboxEventStub struct {
	Subject string
	Payload map[string]interface{}
}

type outboxStub struct {
	mu     sync.Mutex
	events []outboxEventStub
}

func (o *outboxStub) Enqueue(_ context.Context, subject string, payload map[string]interface{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, outboxEventStub{Subject: subject, Payload: payload})
	return nil
}

func (o *outboxStub) subjects() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	subjects := make([]string, 0, len(o.events))
	for _, event := range o.events {
		subjects = append(subjects, event.Subject)
	}
	return subjects
}

type stubGenerator struct {
	questions []ai.GeneratedQuestion
	err       error
	calls     int
}

func (s *stubGenerator) GenerateQuestions(_ context.Context, _ ai.QuestionSetInput) ([]ai.GeneratedQuestion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

func generatedQuestionSet(count int) []ai.GeneratedQuestion {
	questions := make([]ai.GeneratedQuestion, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, ai.GeneratedQuestion{
			Prompt:           "Describe a system you designed",
			Category:         "system_design",
			Difficulty:       "medium",
			EstimatedMinutes: 5,
			Rubric: []ai.RubricCriterion{
				{Aspect: "depth", Weight: 0.5, Excellent: "complete", Good: "partial", NeedsWork: "superficial"},
				{Aspect: "clarity", Weight: 0.5, Excellent: "clear", Good: "mostly clear", NeedsWork: "confusing"},
			},
		})
	}
	return questions
}

type stubScorer struct {
	mu      sync.Mutex
	scoreFn func(input ai.ScoreInput) (ai.ScoreResult, error)
	calls   int
}

func (s *stubScorer) Score(_ context.Context, input ai.ScoreInput) (ai.ScoreResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.scoreFn != nil {
		return s.scoreFn(input)
	}
	return ai.ScoreResult{Score: 7, Feedback: "solid answer"}, nil
}
