// Package eligibility scores the accelerator self-assessment quiz.
package eligibility

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
)

type Scorer struct {
	questions []Question
	maxScore  int
	logger    logger.Logger
}

func NewScorer(questions []Question, log logger.Logger) (*Scorer, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("eligibility quiz has no questions")
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	seen := make(map[string]bool, len(questions))
	max := 0
	for _, q := range questions {
		if q.ID == "" || seen[q.ID] {
			return nil, fmt.Errorf("eligibility question id %q is empty or duplicated", q.ID)
		}
		seen[q.ID] = true
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("eligibility question %s has no options", q.ID)
		}
		for _, o := range q.Options {
			switch o.Value {
			case AnswerYes, AnswerPartial, AnswerNo:
			default:
				return nil, fmt.Errorf("eligibility question %s: unknown option value %q", q.ID, o.Value)
			}
		}
		max += q.maxWeight()
	}
	if max == 0 {
		return nil, fmt.Errorf("eligibility quiz has zero maximum score")
	}

	return &Scorer{
		questions: questions,
		maxScore:  max,
		logger:    log.WithFields(map[string]interface{}{"component": "eligibility"}),
	}, nil
}

func (s *Scorer) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Score rates a complete answer sheet keyed by question id.
func (s *Scorer) Score(answers map[string]string) (*Result, error) {
	var (
		actual  int
		missing []string
		recs    []Recommendation
	)

	for id := range answers {
		if !s.has(id) {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown question %q", id))
		}
	}

	for _, q := range s.questions {
		value, ok := answers[q.ID]
		if !ok {
			missing = append(missing, q.ID)
			continue
		}
		opt, ok := q.option(value)
		if !ok {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("question %s: unknown answer %q", q.ID, value))
		}
		actual += opt.Weight

		switch opt.Value {
		case AnswerNo:
			recs = append(recs, Recommendation{Text: "Focus on: " + q.Criteria, Priority: PriorityHigh})
		case AnswerPartial:
			recs = append(recs, Recommendation{Text: "Strengthen: " + q.Criteria, Priority: PriorityMedium})
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewBadRequestError("unanswered questions: " + strings.Join(missing, ", "))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})

	score := int(math.Round(float64(actual) / float64(s.maxScore) * 100))
	status, label := classify(score)

	s.logger.Info("eligibility scored", map[string]interface{}{
		"score":           score,
		"status":          status,
		"recommendations": len(recs),
	})

	if recs == nil {
		recs = []Recommendation{}
	}
	return &Result{Score: score, Status: status, Label: label, Recommendations: recs}, nil
}

func (s *Scorer) has(id string) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func classify(score int) (string, string) {
	switch {
	case score >= 75:
		return StatusHighlyEligible, "Highly Eligible"
	case score >= 50:
		return StatusEligible, "Eligible with Conditions"
	default:
		return StatusNeedsWork, "Needs Preparation"
	}
}

func priorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}
