package usecase

import (
	"context"

	"kursus-backend/internal/domain"
)

type dashboardUsecase struct {
	userRepo       domain.UserRepository
	courseRepo     domain.CourseRepository
	enrollmentRepo domain.EnrollmentRepository
}

func NewDashboardUsecase(
	ur domain.UserRepository,
	cr domain.CourseRepository,
	er domain.EnrollmentRepository,
) domain.DashboardUsecase {
	return &dashboardUsecase{
		userRepo:       ur,
		courseRepo:     cr,
		enrollmentRepo: er,
	}
}

func (uc *dashboardUsecase) GetAdminDashboard(ctx context.Context) (*domain.AdminDashboardData, error) {
	totalUsers, err := uc.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalStudents, err := uc.userRepo.CountByRole(ctx, domain.RoleStudent)
	if err != nil {
		return nil, err
	}
	totalCourses, err := uc.courseRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalEnrollments, err := uc.enrollmentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	// Practical tests waiting for a reviewer, and reviews that passed but
	// still wait for the certificate decision.
	awaitingReview, err := uc.enrollmentRepo.CountByStatus(ctx, domain.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	awaitingCertificate, err := uc.enrollmentRepo.CountByStatus(ctx, domain.StatusPassedReview)
	if err != nil {
		return nil, err
	}
	approved, err := uc.enrollmentRepo.CountApproved(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.AdminDashboardData{
		TotalUsers:           int(totalUsers),
		TotalStudents:        int(totalStudents),
		TotalCourses:         int(totalCourses),
		TotalEnrollments:     int(totalEnrollments),
		AwaitingReview:       int(awaitingReview),
		AwaitingCertificate:  int(awaitingCertificate),
		ApprovedCertificates: int(approved),
	}, nil
}
