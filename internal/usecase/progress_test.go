package usecase

import (
	"context"
	"testing"

	"kursus-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressUsecase_CourseProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewProgressUsecase(f.courses, f.modules, f.enrollments, f.progress)
	f.complete(t, f.pre, f.page1)
	_, err := f.progress.TouchAccess(ctx, f.user.ID, f.course.ID, f.page2.ID)
	require.NoError(t, err)

	out, err := uc.GetCourseProgress(ctx, f.user.ID, f.slug())
	require.NoError(t, err)
	require.Len(t, out.Modules, 4)
	require.NotNil(t, out.ResumeModuleID)
	assert.Equal(t, f.page2.ID, *out.ResumeModuleID)
	assert.Len(t, out.UserProgress, 3)

	locked := make([]bool, len(out.Modules))
	for i, m := range out.Modules {
		locked[i] = m.Locked
	}
	assert.Equal(t, []bool{false, false, false, true}, locked)
	assert.Equal(t, 2, out.Modules[0].QuestionCount)
	assert.True(t, out.Modules[1].Completed)
}

func TestProgressUsecase_EmptyCourse(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	user := &domain.User{Name: "Budi", Email: "budi@example.com", Password: "x", Role: domain.RoleStudent}
	require.NoError(t, r.users.Create(ctx, user))
	course := &domain.Course{Title: "Kosong", Slug: "kosong", MinimumPostTestScore: 70}
	require.NoError(t, r.courses.Create(ctx, course))
	require.NoError(t, r.enrollments.Create(ctx, &domain.Enrollment{UserID: user.ID, CourseID: course.ID}))

	uc := NewProgressUsecase(r.courses, r.modules, r.enrollments, r.progress)
	out, err := uc.GetCourseProgress(ctx, user.ID, "kosong")
	require.NoError(t, err)
	assert.Empty(t, out.Modules)
	assert.NotNil(t, out.UserProgress)
	assert.Nil(t, out.ResumeModuleID)

	_, err = uc.ResumePoint(ctx, user.ID, "kosong")
	assert.ErrorIs(t, err, domain.ErrNoModulesAvailable)
}

func TestProgressUsecase_OpenAndComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewProgressUsecase(f.courses, f.modules, f.enrollments, f.progress)

	_, err := uc.OpenModule(ctx, f.user.ID, f.slug(), f.page2.ID)
	assert.ErrorIs(t, err, domain.ErrModuleLocked)

	state, err := uc.OpenModule(ctx, f.user.ID, f.slug(), f.page1.ID)
	require.NoError(t, err)
	assert.False(t, state.Completed)
	assert.False(t, state.Locked)

	resume, err := uc.ResumePoint(ctx, f.user.ID, f.slug())
	require.NoError(t, err)
	assert.Equal(t, f.page1.ID, resume.ID)

	row, err := uc.CompleteModule(ctx, f.user.ID, f.slug(), f.page1.ID)
	require.NoError(t, err)
	assert.True(t, row.Completed())

	_, err = uc.CompleteModule(ctx, f.user.ID, f.slug(), f.pre.ID)
	assert.ErrorIs(t, err, domain.ErrNotContentModule)

	resume, err = uc.ResumePoint(ctx, f.user.ID, f.slug())
	require.NoError(t, err)
	assert.Equal(t, f.page1.ID, resume.ID, "last opened content is resumed even when completed")

	state, err = uc.OpenModule(ctx, f.user.ID, f.slug(), f.page2.ID)
	require.NoError(t, err)
	assert.Equal(t, f.page2.ID, state.ID)
}

func TestProgressUsecase_RecordScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewProgressUsecase(f.courses, f.modules, f.enrollments, f.progress)

	_, err := uc.RecordScore(ctx, f.user.ID, f.slug(), f.pre.ID, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidScore)

	_, err = uc.RecordScore(ctx, f.user.ID, f.slug(), f.page1.ID, 50)
	assert.ErrorIs(t, err, domain.ErrNotQuizModule)

	row, err := uc.RecordScore(ctx, f.user.ID, f.slug(), f.pre.ID, 40)
	require.NoError(t, err)
	require.NotNil(t, row.Score)
	assert.Equal(t, 40, *row.Score)
}

func TestProgressUsecase_PreTestGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.course.NeedsPreTest = true
	require.NoError(t, f.courses.Update(ctx, f.course))
	uc := NewProgressUsecase(f.courses, f.modules, f.enrollments, f.progress)

	_, err := uc.OpenModule(ctx, f.user.ID, f.slug(), f.page1.ID)
	assert.ErrorIs(t, err, domain.ErrModuleLocked)

	f.score(t, f.pre, 30)
	_, err = uc.OpenModule(ctx, f.user.ID, f.slug(), f.page1.ID)
	assert.NoError(t, err)
}

func TestProgressUsecase_ByNumericID(t *testing.T) {
	f := newFixture(t)
	uc := NewProgressUsecase(f.courses, f.modules, f.enrollments, f.progress)

	out, err := uc.GetCourseProgress(context.Background(), f.user.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, f.course.ID, out.CourseID)

	_, err = uc.GetCourseProgress(context.Background(), f.user.ID, "tidak-ada")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}
