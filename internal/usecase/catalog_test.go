package usecase

import (
	"context"
	"strings"
	"testing"

	"kursus-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCache records invalidations and serves whatever was last stored.
type countingCache struct {
	stored      map[uint][]domain.ModuleSummary
	invalidated int
}

func (c *countingCache) GetModules(_ context.Context, courseID uint) ([]domain.ModuleSummary, bool) {
	m, ok := c.stored[courseID]
	return m, ok
}

func (c *countingCache) SetModules(_ context.Context, courseID uint, modules []domain.ModuleSummary) {
	c.stored[courseID] = modules
}

func (c *countingCache) Invalidate(_ context.Context, courseID uint) {
	delete(c.stored, courseID)
	c.invalidated++
}

func newCatalog(r *repos, cache domain.CatalogCache) (domain.CatalogUsecase, *memStore) {
	files := newMemStore()
	return NewCatalogUsecase(r.courses, r.modules, r.questions, files, cache), files
}

func intPtr(v int) *int { return &v }

func TestCatalog_CreateCourse(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	uc, _ := newCatalog(r, nil)

	c, err := uc.CreateCourse(ctx, domain.CourseInput{Title: "Terapi Latihan Dasar"})
	require.NoError(t, err)
	assert.Equal(t, "terapi-latihan-dasar", c.Slug)
	assert.Equal(t, domain.DefaultMinimumPostTestScore, c.MinimumPostTestScore)

	_, err = uc.CreateCourse(ctx, domain.CourseInput{Title: "Terapi Latihan Dasar"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	_, err = uc.CreateCourse(ctx, domain.CourseInput{Title: "Angka", Slug: "2024"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = uc.CreateCourse(ctx, domain.CourseInput{Title: "Skor", MinimumPostTestScore: intPtr(120)})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = uc.CreateCourse(ctx, domain.CourseInput{Title: "Lanjutan", Prerequisites: []uint{999}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	adv, err := uc.CreateCourse(ctx, domain.CourseInput{Title: "Lanjutan", Prerequisites: []uint{c.ID, c.ID}})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, []uint(adv.Prerequisites))

	got, err := uc.GetCourse(ctx, "lanjutan")
	require.NoError(t, err)
	assert.Equal(t, adv.ID, got.ID)

	_, err = uc.UpdateCourse(ctx, "lanjutan", domain.CourseInput{Title: "Lanjutan", Prerequisites: []uint{adv.ID}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCatalog_ModuleRules(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	uc, _ := newCatalog(r, nil)
	course, err := uc.CreateCourse(ctx, domain.CourseInput{Title: "Modul"})
	require.NoError(t, err)

	pre, err := uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Pre", Type: "pre_test"})
	require.NoError(t, err)
	assert.Equal(t, domain.TypePreTestQuiz, pre.Type)
	assert.Equal(t, 1, pre.Order)

	page, err := uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Bacaan", Type: "PAGE", Body: "isi"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Order)

	_, err = uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Pre 2", Type: "PRE_TEST_QUIZ"})
	assert.ErrorIs(t, err, domain.ErrDuplicateTestQuiz)

	_, err = uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Dup", Type: "PAGE", Order: 2})
	assert.ErrorIs(t, err, domain.ErrModuleOrderTaken)

	_, err = uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Video", Type: "VIDEO"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = uc.CreateQuestion(ctx, page.ID, domain.QuestionInput{
		Text:            "?",
		Options:         []domain.QuestionOption{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		CorrectOptionID: "a",
	})
	assert.ErrorIs(t, err, domain.ErrNotQuizModule)

	q, err := uc.CreateQuestion(ctx, pre.ID, domain.QuestionInput{
		Text:            "Otot paha depan?",
		Options:         []domain.QuestionOption{{ID: "a", Label: "Quadriceps"}, {ID: "b", Label: "Hamstring"}},
		CorrectOptionID: "a",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Order)

	_, err = uc.UpdateModule(ctx, pre.ID, domain.ModuleInput{Title: "Pre", Type: "PAGE"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = uc.CreateQuestion(ctx, pre.ID, domain.QuestionInput{
		Text:            "Kunci salah",
		Options:         []domain.QuestionOption{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		CorrectOptionID: "z",
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, summaries, err := uc.ListModules(ctx, course.Slug)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 1, summaries[0].QuestionCount)
}

func TestCatalog_ReorderAndCache(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	cache := &countingCache{stored: map[uint][]domain.ModuleSummary{}}
	uc, _ := newCatalog(r, cache)
	course, err := uc.CreateCourse(ctx, domain.CourseInput{Title: "Urut"})
	require.NoError(t, err)

	var ids []uint
	for _, title := range []string{"Satu", "Dua", "Tiga"} {
		m, err := uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: title, Type: "PAGE"})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	_, _, err = uc.ListModules(ctx, course.Slug)
	require.NoError(t, err)
	assert.Contains(t, cache.stored, course.ID)

	_, err = uc.ReorderModules(ctx, course.Slug, []uint{ids[0], ids[1]})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	before := cache.invalidated
	out, err := uc.ReorderModules(ctx, course.Slug, []uint{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	assert.Greater(t, cache.invalidated, before)
	require.Len(t, out, 3)
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, []uint{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].Order, out[1].Order, out[2].Order})
}

func TestCatalog_UploadModuleFile(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	uc, files := newCatalog(r, nil)
	course, err := uc.CreateCourse(ctx, domain.CourseInput{Title: "Dokumen"})
	require.NoError(t, err)
	pdf, err := uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Materi", Type: "pdf"})
	require.NoError(t, err)
	page, err := uc.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Bacaan", Type: "PAGE"})
	require.NoError(t, err)

	_, err = uc.UploadModuleFile(ctx, page.ID, "a.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = uc.UploadModuleFile(ctx, pdf.ID, "a.png", strings.NewReader("png"), 3, "image/png")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	m, err := uc.UploadModuleFile(ctx, pdf.ID, "Materi 1.PDF", strings.NewReader("%PDF-1"), 6, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.FileKey, "modules/"))
	assert.Equal(t, "/api/v1/files/"+m.FileKey, m.FileURL)
	first := m.FileKey

	m, err = uc.UploadModuleFile(ctx, pdf.ID, "revisi.pdf", strings.NewReader("%PDF-2"), 6, "application/pdf")
	require.NoError(t, err)
	assert.NotContains(t, files.objects, first)
	assert.Contains(t, files.objects, m.FileKey)

	require.NoError(t, uc.DeleteCourse(ctx, course.Slug))
	assert.Empty(t, files.objects)
	_, err = uc.GetCourse(ctx, course.Slug)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}
