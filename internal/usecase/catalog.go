package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/logger"
	"kursus-backend/pkg/utils"

	"go.uber.org/zap"
)

type catalogUsecase struct {
	courseRepo   domain.CourseRepository
	moduleRepo   domain.ModuleRepository
	questionRepo domain.QuestionRepository
	files        domain.FileStore
	cache        domain.CatalogCache
}

func NewCatalogUsecase(
	cr domain.CourseRepository,
	mr domain.ModuleRepository,
	qr domain.QuestionRepository,
	files domain.FileStore,
	cache domain.CatalogCache,
) domain.CatalogUsecase {
	if cache == nil {
		cache = noopCache{}
	}
	return &catalogUsecase{
		courseRepo:   cr,
		moduleRepo:   mr,
		questionRepo: qr,
		files:        files,
		cache:        cache,
	}
}

type noopCache struct{}

func (noopCache) GetModules(context.Context, uint) ([]domain.ModuleSummary, bool) { return nil, false }
func (noopCache) SetModules(context.Context, uint, []domain.ModuleSummary) {}
func (noopCache) Invalidate(context.Context, uint) {}

// resolveCourse accepts a numeric id or a slug.
func resolveCourse(ctx context.Context, repo domain.CourseRepository, identifier string) (*domain.Course, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrCourseNotFound
	}
	if utils.IsNumeric(identifier) {
		id, err := strconv.ParseUint(identifier, 10, 32)
		if err != nil {
			return nil, domain.ErrCourseNotFound
		}
		return repo.GetByID(ctx, uint(id))
	}
	return repo.GetBySlug(ctx, identifier)
}

// summarize attaches question counts to quiz modules.
func summarize(ctx context.Context, repo domain.ModuleRepository, modules []domain.Module) ([]domain.ModuleSummary, error) {
	var quizIDs []uint
	for _, m := range modules {
		if m.Type.IsQuiz() {
			quizIDs = append(quizIDs, m.ID)
		}
	}
	counts, err := repo.CountQuestions(ctx, quizIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ModuleSummary, len(modules))
	for i, m := range modules {
		out[i] = domain.ModuleSummary{Module: m, QuestionCount: counts[m.ID]}
	}
	return out, nil
}

// ========== COURSE ==========

func (uc *catalogUsecase) ResolveCourse(ctx context.Context, identifier string) (*domain.Course, error) {
	return resolveCourse(ctx, uc.courseRepo, identifier)
}

func (uc *catalogUsecase) GetCourse(ctx context.Context, identifier string) (*domain.Course, error) {
	return resolveCourse(ctx, uc.courseRepo, identifier)
}

func (uc *catalogUsecase) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return uc.courseRepo.GetAll(ctx)
}

func (uc *catalogUsecase) ListModules(ctx context.Context, identifier string) (*domain.Course, []domain.ModuleSummary, error) {
	course, err := resolveCourse(ctx, uc.courseRepo, identifier)
	if err != nil {
		return nil, nil, err
	}

	if cached, ok := uc.cache.GetModules(ctx, course.ID); ok {
		return course, cached, nil
	}

	modules, err := uc.moduleRepo.GetByCourseID(ctx, course.ID)
	if err != nil {
		return nil, nil, err
	}
	summaries, err := summarize(ctx, uc.moduleRepo, modules)
	if err != nil {
		return nil, nil, err
	}

	uc.cache.SetModules(ctx, course.ID, summaries)
	return course, summaries, nil
}

func (uc *catalogUsecase) CreateCourse(ctx context.Context, in domain.CourseInput) (*domain.Course, error) {
	course := &domain.Course{MinimumPostTestScore: domain.DefaultMinimumPostTestScore}
	if err := uc.applyCourseInput(ctx, course, in); err != nil {
		return nil, err
	}
	if err := uc.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (uc *catalogUsecase) UpdateCourse(ctx context.Context, identifier string, in domain.CourseInput) (*domain.Course, error) {
	course, err := resolveCourse(ctx, uc.courseRepo, identifier)
	if err != nil {
		return nil, err
	}
	if err := uc.applyCourseInput(ctx, course, in); err != nil {
		return nil, err
	}
	if err := uc.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, course.ID)
	return course, nil
}

func (uc *catalogUsecase) applyCourseInput(ctx context.Context, course *domain.Course, in domain.CourseInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Validationf("title is required")
	}

	slug := strings.TrimSpace(in.Slug)
	switch {
	case slug != "":
		slug = utils.Slugify(slug, 100)
	case course.Slug != "":
		slug = course.Slug
	default:
		slug = utils.Slugify(title, 100)
	}
	if utils.IsNumeric(slug) {
		return domain.Validationf("slug must contain at least one letter")
	}
	taken, err := uc.courseRepo.SlugExists(ctx, slug, course.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrSlugTaken
	}

	prereqs := make([]uint, 0, len(in.Prerequisites))
	seen := make(map[uint]bool, len(in.Prerequisites))
	for _, id := range in.Prerequisites {
		if seen[id] {
			continue
		}
		seen[id] = true
		if course.ID != 0 && id == course.ID {
			return domain.Validationf("a course cannot be its own prerequisite")
		}
		if _, err := uc.courseRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrCourseNotFound) {
				return domain.Validationf("prerequisite course %d not found", id)
			}
			return err
		}
		prereqs = append(prereqs, id)
	}

	if in.MinimumPostTestScore != nil {
		if *in.MinimumPostTestScore < 0 || *in.MinimumPostTestScore > 100 {
			return domain.Validationf("minimum_post_test_score must be between 0 and 100")
		}
		course.MinimumPostTestScore = *in.MinimumPostTestScore
	}

	course.Title = title
	course.Slug = slug
	course.Description = in.Description
	course.Prerequisites = prereqs
	course.NeedsPreTest = in.NeedsPreTest
	course.NeedsPostTest = in.NeedsPostTest
	return nil
}

func (uc *catalogUsecase) DeleteCourse(ctx context.Context, identifier string) error {
	course, err := resolveCourse(ctx, uc.courseRepo, identifier)
	if err != nil {
		return err
	}
	modules, err := uc.moduleRepo.GetByCourseID(ctx, course.ID)
	if err != nil {
		return err
	}

	if err := uc.courseRepo.DeleteCascade(ctx, course.ID); err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, course.ID)

	for _, m := range modules {
		uc.removeFile(ctx, m.FileKey)
	}
	return nil
}

// ========== MODULE ==========

func (uc *catalogUsecase) CreateModule(ctx context.Context, identifier string, in domain.ModuleInput) (*domain.Module, error) {
	course, err := resolveCourse(ctx, uc.courseRepo, identifier)
	if err != nil {
		return nil, err
	}
	moduleType, err := domain.ParseModuleType(in.Type)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validationf("title is required")
	}

	existing, err := uc.moduleRepo.GetByCourseID(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	if err := checkModuleSlot(existing, 0, moduleType, in.Order); err != nil {
		return nil, err
	}

	order := in.Order
	if order == 0 {
		order = nextOrder(existing)
	}

	module := &domain.Module{
		CourseID: course.ID,
		Title:    title,
		Type:     moduleType,
		Order:    order,
	}
	if moduleType == domain.TypePage {
		module.Body = in.Body
	}

	if err := uc.moduleRepo.Create(ctx, module); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, course.ID)
	return module, nil
}

func (uc *catalogUsecase) UpdateModule(ctx context.Context, moduleID uint, in domain.ModuleInput) (*domain.Module, error) {
	module, err := uc.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	moduleType, err := domain.ParseModuleType(in.Type)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validationf("title is required")
	}

	siblings, err := uc.moduleRepo.GetByCourseID(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}
	order := in.Order
	if order == module.Order {
		order = 0
	}
	if err := checkModuleSlot(siblings, module.ID, moduleType, order); err != nil {
		return nil, err
	}

	if module.Type.IsQuiz() && !moduleType.IsQuiz() {
		counts, err := uc.moduleRepo.CountQuestions(ctx, []uint{module.ID})
		if err != nil {
			return nil, err
		}
		if counts[module.ID] > 0 {
			return nil, domain.Validationf("delete the questions before turning a quiz into content")
		}
	}

	module.Title = title
	module.Type = moduleType
	if order != 0 {
		module.Order = order
	}
	if moduleType == domain.TypePage {
		module.Body = in.Body
	} else {
		module.Body = ""
	}

	if err := uc.moduleRepo.Update(ctx, module); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, module.CourseID)
	return module, nil
}

// checkModuleSlot enforces one pre-test and one post-test per course and a
// free order value. selfID is skipped when updating.
func checkModuleSlot(siblings []domain.Module, selfID uint, t domain.ModuleType, order int) error {
	for _, m := range siblings {
		if m.ID == selfID {
			continue
		}
		if t.IsQuiz() && m.Type == t {
			return domain.ErrDuplicateTestQuiz
		}
		if order != 0 && m.Order == order {
			return domain.ErrModuleOrderTaken
		}
	}
	if order < 0 {
		return domain.Validationf("order must be positive")
	}
	return nil
}

func nextOrder(modules []domain.Module) int {
	max := 0
	for _, m := range modules {
		if m.Order > max {
			max = m.Order
		}
	}
	return max + 1
}

func (uc *catalogUsecase) DeleteModule(ctx context.Context, moduleID uint) error {
	module, err := uc.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		return err
	}
	if err := uc.moduleRepo.Delete(ctx, moduleID); err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, module.CourseID)
	uc.removeFile(ctx, module.FileKey)
	return nil
}

func (uc *catalogUsecase) ReorderModules(ctx context.Context, identifier string, moduleIDs []uint) ([]domain.ModuleSummary, error) {
	course, err := resolveCourse(ctx, uc.courseRepo, identifier)
	if err != nil {
		return nil, err
	}
	modules, err := uc.moduleRepo.GetByCourseID(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	if len(moduleIDs) != len(modules) {
		return nil, domain.Validationf("module_ids must list every module of the course exactly once")
	}
	known := make(map[uint]bool, len(modules))
	for _, m := range modules {
		known[m.ID] = true
	}
	for _, id := range moduleIDs {
		if !known[id] {
			return nil, domain.Validationf("module_ids must list every module of the course exactly once")
		}
		delete(known, id)
	}

	if err := uc.moduleRepo.Reorder(ctx, course.ID, moduleIDs); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, course.ID)

	_, summaries, err := uc.ListModules(ctx, strconv.FormatUint(uint64(course.ID), 10))
	return summaries, err
}

func (uc *catalogUsecase) UploadModuleFile(ctx context.Context, moduleID uint, filename string, r io.Reader, size int64, contentType string) (*domain.Module, error) {
	module, err := uc.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if module.Type != domain.TypePDFDocument {
		return nil, domain.Validationf("files can only be attached to %s modules", domain.TypePDFDocument)
	}
	if !utils.IsAllowedFileType(contentType, filename, "application/pdf") {
		return nil, domain.Validationf("only PDF files are allowed")
	}

	key := utils.NewObjectKey(fmt.Sprintf("modules/%d", module.CourseID), filename)
	info, err := uc.files.Put(ctx, key, r, size, "application/pdf")
	if err != nil {
		return nil, err
	}

	oldKey := module.FileKey
	module.FileKey = info.Key
	module.FileURL = info.URL
	if err := uc.moduleRepo.Update(ctx, module); err != nil {
		uc.removeFile(ctx, info.Key)
		return nil, err
	}
	uc.cache.Invalidate(ctx, module.CourseID)
	uc.removeFile(ctx, oldKey)
	return module, nil
}

func (uc *catalogUsecase) removeFile(ctx context.Context, key string) {
	if key == "" || uc.files == nil {
		return
	}
	if err := uc.files.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
		logger.Log.Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
	}
}

// ========== QUESTION ==========

func (uc *catalogUsecase) ListQuestions(ctx context.Context, moduleID uint) ([]domain.Question, error) {
	if _, err := uc.moduleRepo.GetByID(ctx, moduleID); err != nil {
		return nil, err
	}
	return uc.questionRepo.GetByModuleID(ctx, moduleID)
}

func (uc *catalogUsecase) CreateQuestion(ctx context.Context, moduleID uint, in domain.QuestionInput) (*domain.Question, error) {
	module, err := uc.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if !module.Type.IsQuiz() {
		return nil, domain.ErrNotQuizModule
	}

	q := &domain.Question{ModuleID: module.ID, Type: domain.QuestionMultipleChoice}
	if err := applyQuestionInput(q, in); err != nil {
		return nil, err
	}
	if q.Order == 0 {
		existing, err := uc.questionRepo.GetByModuleID(ctx, module.ID)
		if err != nil {
			return nil, err
		}
		q.Order = len(existing) + 1
	}

	if err := uc.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, module.CourseID)
	return q, nil
}

func (uc *catalogUsecase) UpdateQuestion(ctx context.Context, questionID uint, in domain.QuestionInput) (*domain.Question, error) {
	q, err := uc.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	order := q.Order
	if err := applyQuestionInput(q, in); err != nil {
		return nil, err
	}
	if q.Order == 0 {
		q.Order = order
	}
	if err := uc.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (uc *catalogUsecase) DeleteQuestion(ctx context.Context, questionID uint) error {
	q, err := uc.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	if err := uc.questionRepo.Delete(ctx, questionID); err != nil {
		return err
	}
	if module, err := uc.moduleRepo.GetByID(ctx, q.ModuleID); err == nil {
		uc.cache.Invalidate(ctx, module.CourseID)
	}
	return nil
}

func applyQuestionInput(q *domain.Question, in domain.QuestionInput) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.Validationf("question text is required")
	}
	if len(in.Options) < 2 {
		return domain.Validationf("a question needs at least two options")
	}

	seen := make(map[string]bool, len(in.Options))
	options := make([]domain.QuestionOption, 0, len(in.Options))
	for _, o := range in.Options {
		id := strings.TrimSpace(o.ID)
		if id == "" || strings.TrimSpace(o.Label) == "" {
			return domain.Validationf("every option needs an id and a label")
		}
		if seen[id] {
			return domain.Validationf("duplicate option id %q", id)
		}
		seen[id] = true
		options = append(options, domain.QuestionOption{ID: id, Label: o.Label})
	}

	q.Text = text
	q.Options = options
	q.CorrectOptionID = strings.TrimSpace(in.CorrectOptionID)
	q.Explanation = in.Explanation
	q.Order = in.Order
	if !q.HasOption(q.CorrectOptionID) {
		return domain.Validationf("correct_option_id must reference one of the options")
	}
	return nil
}
