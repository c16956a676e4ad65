package usecase

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"kursus-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom int

func (f fixedRandom) IntN(n int) int { return int(f) % n }

func newCertificateUC(f *fixture, opts CertificateOptions) *certificateUsecase {
	return NewCertificateUsecase(f.courses, f.modules, f.enrollments, f.progress, f.users, newMemStore(), opts).(*certificateUsecase)
}

func TestCertificate_AssignRequiresPostTest(t *testing.T) {
	f := newFixture(t)
	uc := newCertificateUC(f, CertificateOptions{Random: fixedRandom(0)})

	_, err := uc.AssignPracticalTest(context.Background(), f.user.ID, f.slug())
	assert.ErrorIs(t, err, domain.ErrPostTestNotCompleted)
}

func TestCertificate_AssignOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := newCertificateUC(f, CertificateOptions{Random: fixedRandom(1)})
	f.complete(t, f.pre, f.page1, f.page2)
	f.score(t, f.post, 80)

	first, err := uc.AssignPracticalTest(ctx, f.user.ID, f.slug())
	require.NoError(t, err)
	assert.Equal(t, "Betis", first.AssignedPracticalTest)

	uc.opts.Random = fixedRandom(3)
	_, err = uc.AssignPracticalTest(ctx, f.user.ID, f.slug())
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	stored, err := f.enrollments.GetByID(ctx, f.enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Betis", stored.AssignedPracticalTest)
}

func TestCertificate_SeededRandomIsDeterministic(t *testing.T) {
	pick := func(seed uint64) []string {
		src := newSeededRandom(seed)
		out := make([]string, 20)
		for i := range out {
			out[i] = domain.PracticalTestCategories[src.IntN(len(domain.PracticalTestCategories))]
		}
		return out
	}
	a, b := pick(1), pick(1)
	assert.Equal(t, a, b)
	for _, c := range a {
		assert.Contains(t, domain.PracticalTestCategories, c)
	}

	f := newFixture(t)
	uc := newCertificateUC(f, CertificateOptions{Random: newSeededRandom(1)})
	f.complete(t, f.pre, f.page1, f.page2)
	f.score(t, f.post, 90)

	e, err := uc.AssignPracticalTest(context.Background(), f.user.ID, f.slug())
	require.NoError(t, err)
	assert.Contains(t, domain.PracticalTestCategories, e.AssignedPracticalTest)
}

func TestCertificate_SubmitPracticalTest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := newCertificateUC(f, CertificateOptions{Random: fixedRandom(0)})

	_, err := uc.SubmitPracticalTest(ctx, f.user.ID, f.slug(), "video.mp4", strings.NewReader("x"), 1, "video/mp4")
	assert.ErrorIs(t, err, domain.ErrPracticalTestNotAssigned)

	f.complete(t, f.pre, f.page1, f.page2)
	f.score(t, f.post, 90)
	_, err = uc.AssignPracticalTest(ctx, f.user.ID, f.slug())
	require.NoError(t, err)

	_, err = uc.SubmitPracticalTest(ctx, f.user.ID, f.slug(), "notes.exe", strings.NewReader("x"), 1, "application/x-msdownload")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	e, err := uc.SubmitPracticalTest(ctx, f.user.ID, f.slug(), "video.mp4", strings.NewReader("frames"), 6, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, e.PracticalTestStatus)
	assert.True(t, strings.HasPrefix(e.PracticalTestFileURL, "/api/v1/files/practical/"))
}

func TestCertificate_RejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := newCertificateUC(f, CertificateOptions{})

	_, err := uc.RejectCertificate(ctx, f.enrollment.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrRejectionReasonRequired)

	stored, err := f.enrollments.GetByID(ctx, f.enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotSubmitted, stored.PracticalTestStatus)

	e, err := uc.RejectCertificate(ctx, f.enrollment.ID, "video tidak jelas")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCertificateRejected, e.PracticalTestStatus)
	assert.Equal(t, "video tidak jelas", e.CertificateRejectionReason)
	assert.Nil(t, e.CertificateAdminApprovedAt)
}

func TestCertificate_ApproveHonoursReviewRequirement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	strict := newCertificateUC(f, CertificateOptions{RequirePassedReview: true})
	_, err := strict.ApproveCertificate(ctx, f.enrollment.ID)
	assert.ErrorIs(t, err, domain.ErrPassedReviewNeeded)

	_, err = strict.ReviewPracticalTest(ctx, f.enrollment.ID, "Lulus", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPracticalTestStatus)

	_, err = strict.ReviewPracticalTest(ctx, f.enrollment.ID, domain.StatusPassedReview, "rapi")
	require.NoError(t, err)

	e, err := strict.ApproveCertificate(ctx, f.enrollment.ID)
	require.NoError(t, err)
	assert.NotNil(t, e.CertificateAdminApprovedAt)
	assert.Equal(t, domain.StatusCertificateApproved, e.PracticalTestStatus)
}

func TestCertificate_ApproveWithoutReviewByDefault(t *testing.T) {
	f := newFixture(t)
	uc := newCertificateUC(f, CertificateOptions{})

	e, err := uc.ApproveCertificate(context.Background(), f.enrollment.ID)
	require.NoError(t, err)
	assert.NotNil(t, e.CertificateAdminApprovedAt)
	assert.Empty(t, e.CertificateRejectionReason)
}

func TestCertificate_EligibilityThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := newCertificateUC(f, CertificateOptions{})
	uc.now = func() time.Time { return time.Date(2024, 8, 17, 10, 0, 0, 0, time.UTC) }

	f.complete(t, f.pre, f.page1, f.page2)
	_, err := uc.ApproveCertificate(ctx, f.enrollment.ID)
	require.NoError(t, err)

	f.score(t, f.post, 65)
	el, err := uc.CheckEligibility(ctx, f.user.ID, f.slug())
	require.NoError(t, err)
	assert.False(t, el.Eligible)
	require.Len(t, el.Reasons, 1)
	assert.Contains(t, el.Reasons[0], "65")

	var buf bytes.Buffer
	err = uc.DownloadCertificate(ctx, f.user.ID, f.slug(), &buf)
	assert.ErrorIs(t, err, domain.ErrCertificateNotApproved)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, el.Reasons, de.Reasons)
	assert.Zero(t, buf.Len())

	f.score(t, f.post, 70)
	el, err = uc.CheckEligibility(ctx, f.user.ID, f.slug())
	require.NoError(t, err)
	assert.True(t, el.Eligible)
	assert.Empty(t, el.Reasons)
	assert.Equal(t, "Siti Aminah", el.Data.LearnerName)
	require.NotNil(t, el.Data.PostTestScore)
	assert.Equal(t, 70, *el.Data.PostTestScore)

	require.NoError(t, uc.DownloadCertificate(ctx, f.user.ID, f.slug(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestCertificate_EligibilityWithoutApproval(t *testing.T) {
	f := newFixture(t)
	uc := newCertificateUC(f, CertificateOptions{})
	f.complete(t, f.pre, f.page1, f.page2)
	f.score(t, f.post, 100)

	el, err := uc.CheckEligibility(context.Background(), f.user.ID, f.slug())
	require.NoError(t, err)
	assert.False(t, el.Eligible)
	assert.Equal(t, []string{"Certificate has not been approved by an administrator"}, el.Reasons)
}

func TestCertificate_ScoreThresholdOnDefaultCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	catalog, _ := newCatalog(f.repos, nil)

	course, err := catalog.CreateCourse(ctx, domain.CourseInput{Title: "Kursus Lanjutan"})
	require.NoError(t, err)
	require.False(t, course.NeedsPostTest)
	page, err := catalog.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Materi", Type: string(domain.TypePage)})
	require.NoError(t, err)
	post, err := catalog.CreateModule(ctx, course.Slug, domain.ModuleInput{Title: "Post-test", Type: string(domain.TypePostTestQuiz)})
	require.NoError(t, err)

	enrollment := &domain.Enrollment{UserID: f.user.ID, CourseID: course.ID, PracticalTestStatus: domain.StatusNotSubmitted}
	require.NoError(t, f.enrollments.Create(ctx, enrollment))
	score := 65
	_, err = f.progress.RecordAttempt(ctx, f.user.ID, course.ID, page.ID, nil, true)
	require.NoError(t, err)
	_, err = f.progress.RecordAttempt(ctx, f.user.ID, course.ID, post.ID, &score, true)
	require.NoError(t, err)

	uc := newCertificateUC(f, CertificateOptions{})
	_, err = uc.ApproveCertificate(ctx, enrollment.ID)
	require.NoError(t, err)

	el, err := uc.CheckEligibility(ctx, f.user.ID, course.Slug)
	require.NoError(t, err)
	assert.False(t, el.Eligible)
	assert.Equal(t, []string{"Post-test score 65 is below the minimum of 70"}, el.Reasons)
}

func TestCertificate_MissingPostTest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.modules.Delete(ctx, f.post.ID))

	uc := newCertificateUC(f, CertificateOptions{})
	_, err := uc.ApproveCertificate(ctx, f.enrollment.ID)
	require.NoError(t, err)

	el, err := uc.CheckEligibility(ctx, f.user.ID, f.slug())
	require.NoError(t, err)
	assert.False(t, el.Eligible)
	assert.Equal(t, []string{"This course has no post-test yet"}, el.Reasons)
}

func TestCertificate_ListEnrollmentsByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := newCertificateUC(f, CertificateOptions{})

	list, err := uc.ListEnrollments(ctx, f.slug(), domain.StatusNotSubmitted)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = uc.ListEnrollments(ctx, f.slug(), domain.StatusSubmitted)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.ListEnrollments(ctx, f.slug(), "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidPracticalTestStatus)
}

// seededRandom adapts a seeded math/rand source to domain.RandomSource.
type seededRandom struct{ *rand.Rand }

func (r seededRandom) IntN(n int) int { return r.Intn(n) }

func newSeededRandom(seed uint64) seededRandom {
	return seededRandom{rand.New(rand.NewSource(int64(seed)))}
}
