package usecase

import (
	"context"
	"math"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/monitoring"
)

type quizUsecase struct {
	learnerLoader
	questionRepo domain.QuestionRepository
}

func NewQuizUsecase(
	cr domain.CourseRepository,
	mr domain.ModuleRepository,
	er domain.EnrollmentRepository,
	pr domain.ProgressRepository,
	qr domain.QuestionRepository,
) domain.QuizUsecase {
	return &quizUsecase{
		learnerLoader: learnerLoader{
			courseRepo:     cr,
			moduleRepo:     mr,
			enrollmentRepo: er,
			progressRepo:   pr,
		},
		questionRepo: qr,
	}
}

// openQuiz loads an unlocked quiz module and its questions.
func (uc *quizUsecase) openQuiz(ctx context.Context, userID uint, identifier string, moduleID uint) (*learnerState, *domain.Module, []domain.Question, error) {
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := state.unlocked(moduleID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !m.Type.IsQuiz() {
		return nil, nil, nil, domain.ErrNotQuizModule
	}
	questions, err := uc.questionRepo.GetByModuleID(ctx, m.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return state, m, questions, nil
}

func (uc *quizUsecase) GetQuiz(ctx context.Context, userID uint, identifier string, moduleID uint) ([]domain.QuizQuestion, error) {
	state, m, questions, err := uc.openQuiz(ctx, userID, identifier, moduleID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.progressRepo.TouchAccess(ctx, userID, state.course.ID, m.ID); err != nil {
		return nil, err
	}

	out := make([]domain.QuizQuestion, len(questions))
	for i, q := range questions {
		out[i] = domain.QuizQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Type:    q.Type,
			Options: q.Options,
		}
	}
	return out, nil
}

func (uc *quizUsecase) SubmitTest(ctx context.Context, userID uint, identifier string, moduleID uint, answers map[uint]string) (*domain.TestResult, error) {
	state, m, questions, err := uc.openQuiz(ctx, userID, identifier, moduleID)
	if err != nil {
		return nil, err
	}

	result := ScoreAnswers(questions, answers)
	result.ModuleID = m.ID
	if result.NoQuestions {
		return result, nil
	}

	score := result.ScorePercent
	if _, err := uc.progressRepo.RecordAttempt(ctx, userID, state.course.ID, m.ID, &score, true); err != nil {
		return nil, err
	}
	monitoring.TestSubmissions.WithLabelValues(string(m.Type)).Inc()
	return result, nil
}

// ScoreAnswers grades answers against the key. The percentage is rounded
// half away from zero. An empty quiz scores 0 with NoQuestions set.
func ScoreAnswers(questions []domain.Question, answers map[uint]string) *domain.TestResult {
	if len(questions) == 0 {
		return &domain.TestResult{NoQuestions: true, Results: []domain.QuestionResult{}}
	}

	result := &domain.TestResult{
		Total:   len(questions),
		Results: make([]domain.QuestionResult, len(questions)),
	}
	for i, q := range questions {
		selected := answers[q.ID]
		correct := selected != "" && selected == q.CorrectOptionID
		if correct {
			result.CorrectCount++
		}
		result.Results[i] = domain.QuestionResult{
			QuestionID:       q.ID,
			Text:             q.Text,
			SelectedOptionID: selected,
			CorrectOptionID:  q.CorrectOptionID,
			Correct:          correct,
			Explanation:      q.Explanation,
		}
	}

	result.ScorePercent = int(math.Round(100 * float64(result.CorrectCount) / float64(result.Total)))
	return result
}
