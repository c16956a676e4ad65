package usecase

import (
	"context"
	"testing"

	"kursus-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{ID: uint(i + 1), CorrectOptionID: "a"}
	}
	return qs
}

func answersCorrect(n, correct int) map[uint]string {
	out := make(map[uint]string, n)
	for i := 1; i <= n; i++ {
		if i <= correct {
			out[uint(i)] = "a"
		} else {
			out[uint(i)] = "b"
		}
	}
	return out
}

func TestScoreAnswers(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		correct int
		want    int
	}{
		{"all correct", 4, 4, 100},
		{"none correct", 4, 0, 0},
		{"two of three rounds up", 3, 2, 67},
		{"one of three rounds down", 3, 1, 33},
		{"half rounds away from zero", 8, 1, 13},
		{"seven of ten", 10, 7, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreAnswers(questions(tt.total), answersCorrect(tt.total, tt.correct))
			assert.False(t, res.NoQuestions)
			assert.Equal(t, tt.want, res.ScorePercent)
			assert.Equal(t, tt.correct, res.CorrectCount)
			assert.Equal(t, tt.total, res.Total)
			assert.Len(t, res.Results, tt.total)
		})
	}
}

func TestScoreAnswers_UnansweredIsWrong(t *testing.T) {
	res := ScoreAnswers(questions(2), map[uint]string{1: "a"})
	assert.Equal(t, 50, res.ScorePercent)
	assert.False(t, res.Results[1].Correct)
	assert.Equal(t, "", res.Results[1].SelectedOptionID)
}

func TestScoreAnswers_NoQuestions(t *testing.T) {
	res := ScoreAnswers(nil, map[uint]string{1: "a"})
	assert.True(t, res.NoQuestions)
	assert.Equal(t, 0, res.ScorePercent)
	assert.Zero(t, res.Total)
}

func TestQuizUsecase_SubmitRecordsScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewQuizUsecase(f.courses, f.modules, f.enrollments, f.progress, f.questions)

	qs, err := f.questions.GetByModuleID(ctx, f.pre.ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)

	res, err := uc.SubmitTest(ctx, f.user.ID, f.slug(), f.pre.ID, map[uint]string{qs[0].ID: "a", qs[1].ID: "b"})
	require.NoError(t, err)
	assert.Equal(t, 50, res.ScorePercent)
	assert.Equal(t, f.pre.ID, res.ModuleID)

	row, err := f.progress.GetByUserAndModule(ctx, f.user.ID, f.pre.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.NotNil(t, row.Score)
	assert.Equal(t, 50, *row.Score)
	assert.True(t, row.Completed())
	firstCompletion := *row.CompletedAt

	// A retake overwrites the score but keeps the first completion time.
	res, err = uc.SubmitTest(ctx, f.user.ID, f.slug(), f.pre.ID, map[uint]string{qs[0].ID: "a", qs[1].ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 100, res.ScorePercent)

	row, err = f.progress.GetByUserAndModule(ctx, f.user.ID, f.pre.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, *row.Score)
	assert.True(t, firstCompletion.Equal(*row.CompletedAt))
}

func TestQuizUsecase_LockedPostTest(t *testing.T) {
	f := newFixture(t)
	uc := NewQuizUsecase(f.courses, f.modules, f.enrollments, f.progress, f.questions)
	f.complete(t, f.pre, f.page1)

	_, err := uc.SubmitTest(context.Background(), f.user.ID, f.slug(), f.post.ID, map[uint]string{})
	assert.ErrorIs(t, err, domain.ErrModuleLocked)
}

func TestQuizUsecase_EmptyQuizRecordsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewQuizUsecase(f.courses, f.modules, f.enrollments, f.progress, f.questions)

	qs, err := f.questions.GetByModuleID(ctx, f.pre.ID)
	require.NoError(t, err)
	for _, q := range qs {
		require.NoError(t, f.questions.Delete(ctx, q.ID))
	}

	res, err := uc.SubmitTest(ctx, f.user.ID, f.slug(), f.pre.ID, map[uint]string{})
	require.NoError(t, err)
	assert.True(t, res.NoQuestions)
	assert.Equal(t, 0, res.ScorePercent)
	assert.Equal(t, f.pre.ID, res.ModuleID)

	row, err := f.progress.GetByUserAndModule(ctx, f.user.ID, f.pre.ID)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestQuizUsecase_GetQuizHidesKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewQuizUsecase(f.courses, f.modules, f.enrollments, f.progress, f.questions)

	quiz, err := uc.GetQuiz(ctx, f.user.ID, f.slug(), f.pre.ID)
	require.NoError(t, err)
	assert.Len(t, quiz, 2)

	row, err := f.progress.GetByUserAndModule(ctx, f.user.ID, f.pre.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.NotNil(t, row.LastAccessedAt)
	assert.False(t, row.Completed())

	_, err = uc.GetQuiz(ctx, f.user.ID, f.slug(), f.page1.ID)
	assert.ErrorIs(t, err, domain.ErrNotQuizModule)
}

func TestQuizUsecase_NotEnrolled(t *testing.T) {
	f := newFixture(t)
	uc := NewQuizUsecase(f.courses, f.modules, f.enrollments, f.progress, f.questions)

	_, err := uc.GetQuiz(context.Background(), f.user.ID+100, f.slug(), f.pre.ID)
	assert.ErrorIs(t, err, domain.ErrNotEnrolled)
}
