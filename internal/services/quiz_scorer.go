package services

import (
	"log"

	"github.com/ad/go-eduhub/internal/models"
)

type ScoreResult struct {
	Percentage float64
	Passed     bool
	Achieved   int
	Total      int
}

// QuizScorer grades an answer sheet against a quiz. It has no state and no
// side effects; re-running it on a fresh answer set discards nothing, since
// only the ledger write persists attempts.
type QuizScorer struct{}

func NewQuizScorer() *QuizScorer {
	return &QuizScorer{}
}

// Score computes the weighted percentage and the pass decision. Answers are
// matched to questions by position; a missing or out-of-range entry counts
// as incorrect. The percentage is left unrounded so repeated evaluations
// don't compound rounding error; callers round for display only.
func (s *QuizScorer) Score(quiz *models.Quiz, answers []int) *ScoreResult {
	achieved := 0
	total := 0

	for i, question := range quiz.Questions {
		total += question.Points
		if i < len(answers) && answers[i] == question.CorrectAnswer {
			achieved += question.Points
		}
	}

	if total <= 0 {
		// A quiz must have at least one positive-weight question. Degrade to
		// score 0, not passed, instead of dividing by zero.
		log.Printf("[QUIZ_SCORER] quiz %s has no scorable questions", quiz.ID)
		return &ScoreResult{Percentage: 0, Passed: false, Achieved: 0, Total: 0}
	}

	percentage := 100 * float64(achieved) / float64(total)
	return &ScoreResult{
		Percentage: percentage,
		Passed:     percentage >= quiz.PassingScore,
		Achieved:   achieved,
		Total:      total,
	}
}
