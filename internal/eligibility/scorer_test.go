package eligibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
)

// ==========================
// Test Helpers
// ==========================

func createTestQuestions() []Question {
	opts := func(yes, partial, no int) []Option {
		return []Option{
			{Label: "Yes", Value: AnswerYes, Weight: yes},
			{Label: "Partially", Value: AnswerPartial, Weight: partial},
			{Label: "No", Value: AnswerNo, Weight: no},
		}
	}
	return []Question{
		{ID: "tech-based", Criteria: "Technology-based startup with competitive advantage", Options: opts(40, 20, 0)},
		{ID: "core-team", Criteria: "Strong core team with key positions filled", Options: opts(40, 20, 5)},
		{ID: "uae-resident", Criteria: "Founder is UAE resident", Options: opts(20, 8, 0)},
	}
}

func createTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(createTestQuestions(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return s
}

// ==========================
// Score Tests
// ==========================

func TestScorer_Score(t *testing.T) {
	tests := []struct {
		name       string
		answers    map[string]string
		wantScore  int
		wantStatus string
		wantRecs   []Recommendation
	}{
		{
			name:       "all yes",
			answers:    map[string]string{"tech-based": "yes", "core-team": "yes", "uae-resident": "yes"},
			wantScore:  100,
			wantStatus: StatusHighlyEligible,
			wantRecs:   []Recommendation{},
		},
		{
			name:       "one criterion missed",
			answers:    map[string]string{"tech-based": "yes", "core-team": "yes", "uae-resident": "no"},
			wantScore:  80,
			wantStatus: StatusHighlyEligible,
			wantRecs:   []Recommendation{{Text: "Focus on: Founder is UAE resident", Priority: PriorityHigh}},
		},
		{
			name:       "eligible with conditions",
			answers:    map[string]string{"tech-based": "partial", "core-team": "yes", "uae-resident": "no"},
			wantScore:  60,
			wantStatus: StatusEligible,
			wantRecs: []Recommendation{
				{Text: "Focus on: Founder is UAE resident", Priority: PriorityHigh},
				{Text: "Strengthen: Technology-based startup with competitive advantage", Priority: PriorityMedium},
			},
		},
		{
			name:       "needs preparation",
			answers:    map[string]string{"tech-based": "no", "core-team": "no", "uae-resident": "partial"},
			wantScore:  13,
			wantStatus: StatusNeedsWork,
			wantRecs: []Recommendation{
				{Text: "Focus on: Technology-based startup with competitive advantage", Priority: PriorityHigh},
				{Text: "Focus on: Strong core team with key positions filled", Priority: PriorityHigh},
				{Text: "Strengthen: Founder is UAE resident", Priority: PriorityMedium},
			},
		},
	}

	s := createTestScorer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Score(tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantRecs, res.Recommendations)
		})
	}
}

func TestScorer_RejectsBadAnswers(t *testing.T) {
	s := createTestScorer(t)

	tests := []struct {
		name    string
		answers map[string]string
		want    string
	}{
		{"missing", map[string]string{"tech-based": "yes"}, "unanswered questions: core-team, uae-resident"},
		{"unknown question", map[string]string{"tech-based": "yes", "core-team": "yes", "uae-resident": "yes", "age": "yes"}, `unknown question "age"`},
		{"unknown answer", map[string]string{"tech-based": "maybe", "core-team": "yes", "uae-resident": "yes"}, `unknown answer "maybe"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Score(tt.answers)
			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeBadRequest, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.want)
		})
	}
}

func TestNewScorer_Validation(t *testing.T) {
	_, err := NewScorer(nil, nil)
	assert.Error(t, err)

	dup := createTestQuestions()
	dup[1].ID = dup[0].ID
	_, err = NewScorer(dup, nil)
	assert.Error(t, err)

	bad := createTestQuestions()
	bad[0].Options[0].Value = "definitely"
	_, err = NewScorer(bad, nil)
	assert.Error(t, err)
}
