package usecase

import (
	"context"
	"fmt"
	"time"

	"kursus-backend/internal/domain"
)

type enrollmentUsecase struct {
	courseRepo     domain.CourseRepository
	enrollmentRepo domain.EnrollmentRepository
}

func NewEnrollmentUsecase(cr domain.CourseRepository, er domain.EnrollmentRepository) domain.EnrollmentUsecase {
	return &enrollmentUsecase{courseRepo: cr, enrollmentRepo: er}
}

// Enroll requires an approved certificate in every prerequisite course.
func (uc *enrollmentUsecase) Enroll(ctx context.Context, userID uint, identifier string) (*domain.Enrollment, error) {
	course, err := resolveCourse(ctx, uc.courseRepo, identifier)
	if err != nil {
		return nil, err
	}

	existing, err := uc.enrollmentRepo.GetByUserAndCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyEnrolled
	}

	var missing []string
	for _, prereqID := range course.Prerequisites {
		e, err := uc.enrollmentRepo.GetByUserAndCourse(ctx, userID, prereqID)
		if err != nil {
			return nil, err
		}
		if e != nil && e.CertificateAdminApprovedAt != nil {
			continue
		}
		title := fmt.Sprintf("course %d", prereqID)
		if prereq, err := uc.courseRepo.GetByID(ctx, prereqID); err == nil {
			title = prereq.Title
		}
		missing = append(missing, fmt.Sprintf("Complete %q first", title))
	}
	if len(missing) > 0 {
		return nil, domain.ErrPrerequisitesIncomplete.WithReasons(missing)
	}

	enrollment := &domain.Enrollment{
		UserID:              userID,
		CourseID:            course.ID,
		EnrolledAt:          time.Now(),
		PracticalTestStatus: domain.StatusNotSubmitted,
	}
	if err := uc.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	enrollment.Course = *course
	return enrollment, nil
}

func (uc *enrollmentUsecase) MyEnrollments(ctx context.Context, userID uint) ([]domain.Enrollment, error) {
	return uc.enrollmentRepo.GetByUserID(ctx, userID)
}
