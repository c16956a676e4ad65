package domain

import (
	"context"
	"io"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	Update(ctx context.Context, course *Course) error
	GetAll(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id uint) (*Course, error)
	GetBySlug(ctx context.Context, slug string) (*Course, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	// DeleteCascade removes the course with its modules, questions, enrollments
	// and progress rows in a single transaction.
	DeleteCascade(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type ModuleRepository interface {
	Create(ctx context.Context, module *Module) error
	Update(ctx context.Context, module *Module) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Module, error)
	// GetByCourseID returns modules ordered by order, then id.
	GetByCourseID(ctx context.Context, courseID uint) ([]Module, error)
	CountQuestions(ctx context.Context, moduleIDs []uint) (map[uint]int, error)
	// Reorder assigns positions 1..n following moduleIDs.
	Reorder(ctx context.Context, courseID uint, moduleIDs []uint) error
}

type QuestionRepository interface {
	Create(ctx context.Context, q *Question) error
	Update(ctx context.Context, q *Question) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Question, error)
	GetByModuleID(ctx context.Context, moduleID uint) ([]Question, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *Enrollment) error
	Update(ctx context.Context, enrollment *Enrollment) error
	GetByID(ctx context.Context, id uint) (*Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*Enrollment, error)
	GetByUserID(ctx context.Context, userID uint) ([]Enrollment, error)
	GetByCourseID(ctx context.Context, courseID uint, status PracticalTestStatus) ([]Enrollment, error)
	// AssignPracticalTest sets the category only when none is assigned yet and
	// reports whether this call performed the assignment.
	AssignPracticalTest(ctx context.Context, id uint, category string, at time.Time) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status PracticalTestStatus) (int64, error)
	CountApproved(ctx context.Context) (int64, error)
}

type ProgressRepository interface {
	// GetProgress returns the learner's rows for a course ordered by module order.
	GetProgress(ctx context.Context, userID, courseID uint) ([]UserProgress, error)
	// RecordAttempt upserts on (user_id, module_id). A nil score leaves the
	// stored score untouched; completed_at is set once and never replaced.
	RecordAttempt(ctx context.Context, userID, courseID, moduleID uint, score *int, complete bool) (*UserProgress, error)
	TouchAccess(ctx context.Context, userID, courseID, moduleID uint) (*UserProgress, error)
	GetByUserAndModule(ctx context.Context, userID, moduleID uint) (*UserProgress, error)
}

// FileStore keeps uploaded files (PDF modules, practical-test artifacts).
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*FileInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, *FileInfo, error)
	Delete(ctx context.Context, key string) error
}

// CatalogCache holds serialized module lists per course. Implementations must
// treat misses and transport failures alike by returning ok=false.
type CatalogCache interface {
	GetModules(ctx context.Context, courseID uint) ([]ModuleSummary, bool)
	SetModules(ctx context.Context, courseID uint, modules []ModuleSummary)
	Invalidate(ctx context.Context, courseID uint)
}

// RandomSource picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// ========== USECASES ==========

type AuthUsecase interface {
	Register(ctx context.Context, user *User) error
	Login(ctx context.Context, email, password string) (string, error)
}

type UserUsecase interface {
	ImportUsers(ctx context.Context, r io.Reader) (*ImportSummary, error)
}

type CourseInput struct {
	Title                string `json:"title" binding:"required"`
	Slug                 string `json:"slug"`
	Description          string `json:"description"`
	Prerequisites        []uint `json:"prerequisites"`
	NeedsPreTest         bool   `json:"needs_pre_test"`
	NeedsPostTest        bool   `json:"needs_post_test"`
	MinimumPostTestScore *int   `json:"minimum_post_test_score" binding:"omitempty,min=0,max=100"`
}

type ModuleInput struct {
	Title string `json:"title" binding:"required"`
	Type  string `json:"type" binding:"required"`
	Order int    `json:"order" binding:"min=0"`
	Body  string `json:"body"`
}

type QuestionInput struct {
	Text            string           `json:"text" binding:"required"`
	Options         []QuestionOption `json:"options" binding:"required,min=2,dive"`
	CorrectOptionID string           `json:"correct_option_id" binding:"required"`
	Explanation     string           `json:"explanation"`
	Order           int              `json:"order"`
}

type CatalogUsecase interface {
	ResolveCourse(ctx context.Context, identifier string) (*Course, error)
	GetCourse(ctx context.Context, identifier string) (*Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	ListModules(ctx context.Context, identifier string) (*Course, []ModuleSummary, error)

	CreateCourse(ctx context.Context, in CourseInput) (*Course, error)
	UpdateCourse(ctx context.Context, identifier string, in CourseInput) (*Course, error)
	DeleteCourse(ctx context.Context, identifier string) error

	CreateModule(ctx context.Context, identifier string, in ModuleInput) (*Module, error)
	UpdateModule(ctx context.Context, moduleID uint, in ModuleInput) (*Module, error)
	DeleteModule(ctx context.Context, moduleID uint) error
	ReorderModules(ctx context.Context, identifier string, moduleIDs []uint) ([]ModuleSummary, error)
	UploadModuleFile(ctx context.Context, moduleID uint, filename string, r io.Reader, size int64, contentType string) (*Module, error)

	ListQuestions(ctx context.Context, moduleID uint) ([]Question, error)
	CreateQuestion(ctx context.Context, moduleID uint, in QuestionInput) (*Question, error)
	UpdateQuestion(ctx context.Context, questionID uint, in QuestionInput) (*Question, error)
	DeleteQuestion(ctx context.Context, questionID uint) error
}

type EnrollmentUsecase interface {
	Enroll(ctx context.Context, userID uint, identifier string) (*Enrollment, error)
	MyEnrollments(ctx context.Context, userID uint) ([]Enrollment, error)
}

type ProgressUsecase interface {
	GetCourseProgress(ctx context.Context, userID uint, identifier string) (*CourseProgress, error)
	ResumePoint(ctx context.Context, userID uint, identifier string) (*Module, error)
	OpenModule(ctx context.Context, userID uint, identifier string, moduleID uint) (*ModuleState, error)
	CompleteModule(ctx context.Context, userID uint, identifier string, moduleID uint) (*UserProgress, error)
	RecordScore(ctx context.Context, userID uint, identifier string, moduleID uint, score int) (*UserProgress, error)
}

type QuizUsecase interface {
	GetQuiz(ctx context.Context, userID uint, identifier string, moduleID uint) ([]QuizQuestion, error)
	SubmitTest(ctx context.Context, userID uint, identifier string, moduleID uint, answers map[uint]string) (*TestResult, error)
}

type CertificateUsecase interface {
	AssignPracticalTest(ctx context.Context, userID uint, identifier string) (*Enrollment, error)
	SubmitPracticalTest(ctx context.Context, userID uint, identifier string, filename string, r io.Reader, size int64, contentType string) (*Enrollment, error)
	ReviewPracticalTest(ctx context.Context, enrollmentID uint, status PracticalTestStatus, notes string) (*Enrollment, error)
	ApproveCertificate(ctx context.Context, enrollmentID uint) (*Enrollment, error)
	RejectCertificate(ctx context.Context, enrollmentID uint, reason string) (*Enrollment, error)
	CheckEligibility(ctx context.Context, userID uint, identifier string) (*Eligibility, error)
	DownloadCertificate(ctx context.Context, userID uint, identifier string, w io.Writer) error
	ListEnrollments(ctx context.Context, identifier string, status PracticalTestStatus) ([]Enrollment, error)
}

type DashboardUsecase interface {
	GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error)
}
