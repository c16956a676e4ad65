package usecase

import (
	"context"

	"kursus-backend/internal/domain"
)

// learnerState is one learner's view of one course: catalog, ledger and the
// lock state derived from both.
type learnerState struct {
	course     *domain.Course
	enrollment *domain.Enrollment
	modules    []domain.Module
	rows       []domain.UserProgress
	progress   ProgressIndex
	locks      []bool
}

func (s *learnerState) module(id uint) (int, *domain.Module, error) {
	for i := range s.modules {
		if s.modules[i].ID == id {
			return i, &s.modules[i], nil
		}
	}
	return -1, nil, domain.ErrModuleNotFound
}

// unlocked returns the module when the learner may open it.
func (s *learnerState) unlocked(id uint) (*domain.Module, error) {
	i, m, err := s.module(id)
	if err != nil {
		return nil, err
	}
	if s.locks[i] {
		return nil, domain.ErrModuleLocked
	}
	return m, nil
}

func (s *learnerState) moduleOfType(t domain.ModuleType) *domain.Module {
	if i := findModuleType(s.modules, t); i >= 0 {
		return &s.modules[i]
	}
	return nil
}

type learnerLoader struct {
	courseRepo     domain.CourseRepository
	moduleRepo     domain.ModuleRepository
	enrollmentRepo domain.EnrollmentRepository
	progressRepo   domain.ProgressRepository
}

// enrolled resolves the course and requires an enrollment for userID.
func (l learnerLoader) enrolled(ctx context.Context, userID uint, identifier string) (*domain.Course, *domain.Enrollment, error) {
	course, err := resolveCourse(ctx, l.courseRepo, identifier)
	if err != nil {
		return nil, nil, err
	}
	enrollment, err := l.enrollmentRepo.GetByUserAndCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, nil, err
	}
	if enrollment == nil {
		return nil, nil, domain.ErrNotEnrolled
	}
	return course, enrollment, nil
}

func (l learnerLoader) load(ctx context.Context, userID uint, identifier string) (*learnerState, error) {
	course, enrollment, err := l.enrolled(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}

	modules, err := l.moduleRepo.GetByCourseID(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	rows, err := l.progressRepo.GetProgress(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}

	progress := IndexProgress(rows)
	return &learnerState{
		course:     course,
		enrollment: enrollment,
		modules:    modules,
		rows:       rows,
		progress:   progress,
		locks:      ComputeLocks(course.NeedsPreTest, modules, progress),
	}, nil
}
