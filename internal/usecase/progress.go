package usecase

import (
	"context"
	"errors"

	"kursus-backend/internal/domain"
)

type progressUsecase struct {
	learnerLoader
}

func NewProgressUsecase(
	cr domain.CourseRepository,
	mr domain.ModuleRepository,
	er domain.EnrollmentRepository,
	pr domain.ProgressRepository,
) domain.ProgressUsecase {
	return &progressUsecase{learnerLoader{
		courseRepo:     cr,
		moduleRepo:     mr,
		enrollmentRepo: er,
		progressRepo:   pr,
	}}
}

func (uc *progressUsecase) GetCourseProgress(ctx context.Context, userID uint, identifier string) (*domain.CourseProgress, error) {
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}

	summaries, err := summarize(ctx, uc.moduleRepo, state.modules)
	if err != nil {
		return nil, err
	}

	modules := make([]domain.ModuleState, len(summaries))
	for i, s := range summaries {
		modules[i] = moduleState(s, state.progress, state.locks[i])
	}

	out := &domain.CourseProgress{
		CourseID:     state.course.ID,
		CourseTitle:  state.course.Title,
		Modules:      modules,
		UserProgress: state.rows,
	}
	if out.UserProgress == nil {
		out.UserProgress = []domain.UserProgress{}
	}

	resume, err := ResolveResume(state.modules, state.progress)
	switch {
	case err == nil:
		out.ResumeModuleID = &resume.ID
	case !errors.Is(err, domain.ErrNoModulesAvailable):
		return nil, err
	}
	return out, nil
}

func (uc *progressUsecase) ResumePoint(ctx context.Context, userID uint, identifier string) (*domain.Module, error) {
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	return ResolveResume(state.modules, state.progress)
}

func (uc *progressUsecase) OpenModule(ctx context.Context, userID uint, identifier string, moduleID uint) (*domain.ModuleState, error) {
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	m, err := state.unlocked(moduleID)
	if err != nil {
		return nil, err
	}

	row, err := uc.progressRepo.TouchAccess(ctx, userID, state.course.ID, m.ID)
	if err != nil {
		return nil, err
	}
	state.progress[m.ID] = row

	summaries, err := summarize(ctx, uc.moduleRepo, []domain.Module{*m})
	if err != nil {
		return nil, err
	}
	ms := moduleState(summaries[0], state.progress, false)
	return &ms, nil
}

func (uc *progressUsecase) CompleteModule(ctx context.Context, userID uint, identifier string, moduleID uint) (*domain.UserProgress, error) {
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	m, err := state.unlocked(moduleID)
	if err != nil {
		return nil, err
	}
	if !m.Type.IsContent() {
		return nil, domain.ErrNotContentModule
	}
	return uc.progressRepo.RecordAttempt(ctx, userID, state.course.ID, m.ID, nil, true)
}

func (uc *progressUsecase) RecordScore(ctx context.Context, userID uint, identifier string, moduleID uint, score int) (*domain.UserProgress, error) {
	if score < 0 || score > 100 {
		return nil, domain.ErrInvalidScore
	}
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	m, err := state.unlocked(moduleID)
	if err != nil {
		return nil, err
	}
	if !m.Type.IsQuiz() {
		return nil, domain.ErrNotQuizModule
	}
	return uc.progressRepo.RecordAttempt(ctx, userID, state.course.ID, m.ID, &score, true)
}

func moduleState(s domain.ModuleSummary, progress ProgressIndex, locked bool) domain.ModuleState {
	ms := domain.ModuleState{ModuleSummary: s, Locked: locked}
	if row := progress[s.ID]; row != nil {
		ms.Completed = row.Completed()
		if s.Type.IsQuiz() {
			ms.Score = row.Score
		}
	}
	return ms
}
