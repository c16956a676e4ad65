package usecase

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/logger"
	"kursus-backend/pkg/monitoring"
	"kursus-backend/pkg/utils"

	"go.uber.org/zap"
)

// ========== CERTIFICATE USECASE ==========

type CertificateOptions struct {
	// RequirePassedReview refuses approval unless the practical test passed review.
	RequirePassedReview bool
	// Random picks the practical-test category; nil uses the global source.
	Random domain.RandomSource
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.Intn(n) }

type certificateUsecase struct {
	learnerLoader
	userRepo domain.UserRepository
	files    domain.FileStore
	opts     CertificateOptions
	now      func() time.Time
}

func NewCertificateUsecase(
	cr domain.CourseRepository,
	mr domain.ModuleRepository,
	er domain.EnrollmentRepository,
	pr domain.ProgressRepository,
	ur domain.UserRepository,
	files domain.FileStore,
	opts CertificateOptions,
) domain.CertificateUsecase {
	if opts.Random == nil {
		opts.Random = globalRandom{}
	}
	return &certificateUsecase{
		learnerLoader: learnerLoader{
			courseRepo:     cr,
			moduleRepo:     mr,
			enrollmentRepo: er,
			progressRepo:   pr,
		},
		userRepo: ur,
		files:    files,
		opts:     opts,
		now:      time.Now,
	}
}

// ========== PRACTICAL TEST ==========

func (uc *certificateUsecase) AssignPracticalTest(ctx context.Context, userID uint, identifier string) (*domain.Enrollment, error) {
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	if post := state.moduleOfType(domain.TypePostTestQuiz); post != nil && !state.progress.Completed(post.ID) {
		return nil, domain.ErrPostTestNotCompleted
	}
	if state.enrollment.AssignedPracticalTest != "" {
		return nil, domain.ErrAlreadyAssigned
	}

	category := domain.PracticalTestCategories[uc.opts.Random.IntN(len(domain.PracticalTestCategories))]
	ok, err := uc.enrollmentRepo.AssignPracticalTest(ctx, state.enrollment.ID, category, uc.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyAssigned
	}

	monitoring.PracticalTestAssignments.WithLabelValues(category).Inc()
	logger.Log.Info("practical test assigned",
		zap.Uint("enrollment_id", state.enrollment.ID),
		zap.String("category", category),
	)
	return uc.enrollmentRepo.GetByID(ctx, state.enrollment.ID)
}

func (uc *certificateUsecase) SubmitPracticalTest(ctx context.Context, userID uint, identifier string, filename string, r io.Reader, size int64, contentType string) (*domain.Enrollment, error) {
	course, enrollment, err := uc.enrolled(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	if enrollment.AssignedPracticalTest == "" {
		return nil, domain.ErrPracticalTestNotAssigned
	}
	if enrollment.CertificateAdminApprovedAt != nil {
		return nil, domain.Conflictf("certificate already approved, submission is closed")
	}
	if !utils.IsAllowedFileType(contentType, filename, "application/pdf", "image/", "video/") {
		return nil, domain.Validationf("only PDF, image or video files are allowed")
	}

	key := utils.NewObjectKey(fmt.Sprintf("practical/%d/%d", course.ID, userID), filename)
	info, err := uc.files.Put(ctx, key, r, size, contentType)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	enrollment.PracticalTestFileURL = info.URL
	enrollment.PracticalTestStatus = domain.StatusSubmitted
	enrollment.CertificateStatusUpdatedAt = &now
	if err := uc.enrollmentRepo.Update(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (uc *certificateUsecase) ReviewPracticalTest(ctx context.Context, enrollmentID uint, status domain.PracticalTestStatus, notes string) (*domain.Enrollment, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidPracticalTestStatus
	}
	enrollment, err := uc.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	enrollment.PracticalTestStatus = status
	enrollment.PracticalTestAdminNotes = notes
	enrollment.CertificateStatusUpdatedAt = &now
	if err := uc.enrollmentRepo.Update(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// ========== CERTIFICATE DECISION ==========

func (uc *certificateUsecase) ApproveCertificate(ctx context.Context, enrollmentID uint) (*domain.Enrollment, error) {
	enrollment, err := uc.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if uc.opts.RequirePassedReview && enrollment.PracticalTestStatus != domain.StatusPassedReview {
		return nil, domain.ErrPassedReviewNeeded
	}

	now := uc.now()
	enrollment.CertificateAdminApprovedAt = &now
	enrollment.CertificateStatusUpdatedAt = &now
	enrollment.PracticalTestStatus = domain.StatusCertificateApproved
	enrollment.CertificateRejectionReason = ""
	if err := uc.enrollmentRepo.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	monitoring.CertificateDecisions.WithLabelValues("approved").Inc()
	return enrollment, nil
}

func (uc *certificateUsecase) RejectCertificate(ctx context.Context, enrollmentID uint, reason string) (*domain.Enrollment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrRejectionReasonRequired
	}
	enrollment, err := uc.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	enrollment.CertificateAdminApprovedAt = nil
	enrollment.CertificateStatusUpdatedAt = &now
	enrollment.PracticalTestStatus = domain.StatusCertificateRejected
	enrollment.CertificateRejectionReason = reason
	if err := uc.enrollmentRepo.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	monitoring.CertificateDecisions.WithLabelValues("rejected").Inc()
	return enrollment, nil
}

// ========== ELIGIBILITY ==========

func (uc *certificateUsecase) CheckEligibility(ctx context.Context, userID uint, identifier string) (*domain.Eligibility, error) {
	state, err := uc.load(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := &domain.EligibilityData{
		LearnerName:     user.Name,
		CourseTitle:     state.course.Title,
		MinimumScore:    state.course.MinimumPostTestScore,
		ApprovedAt:      state.enrollment.CertificateAdminApprovedAt,
		PracticalStatus: string(state.enrollment.PracticalTestStatus),
	}

	var reasons []string
	post := state.moduleOfType(domain.TypePostTestQuiz)
	if post != nil {
		if row := state.progress[post.ID]; row != nil {
			data.PostTestScore = row.Score
		}
	}

	switch {
	case post == nil:
		reasons = append(reasons, "This course has no post-test yet")
	case !state.progress.Completed(post.ID):
		reasons = append(reasons, "Post-test has not been completed")
	case data.PostTestScore == nil || *data.PostTestScore < state.course.MinimumPostTestScore:
		score := 0
		if data.PostTestScore != nil {
			score = *data.PostTestScore
		}
		reasons = append(reasons, fmt.Sprintf("Post-test score %d is below the minimum of %d", score, state.course.MinimumPostTestScore))
	}
	if state.enrollment.CertificateAdminApprovedAt == nil {
		reasons = append(reasons, "Certificate has not been approved by an administrator")
	}

	return &domain.Eligibility{
		Eligible: len(reasons) == 0,
		Reasons:  reasons,
		Data:     data,
	}, nil
}

func (uc *certificateUsecase) DownloadCertificate(ctx context.Context, userID uint, identifier string, w io.Writer) error {
	eligibility, err := uc.CheckEligibility(ctx, userID, identifier)
	if err != nil {
		return err
	}
	if !eligibility.Eligible {
		return domain.ErrCertificateNotApproved.WithReasons(eligibility.Reasons)
	}
	return renderCertificate(w, eligibility.Data)
}

func (uc *certificateUsecase) ListEnrollments(ctx context.Context, identifier string, status domain.PracticalTestStatus) ([]domain.Enrollment, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidPracticalTestStatus
	}
	course, err := resolveCourse(ctx, uc.courseRepo, identifier)
	if err != nil {
		return nil, err
	}
	return uc.enrollmentRepo.GetByCourseID(ctx, course.ID, status)
}
