package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool { return r == RoleStudent || r == RoleAdmin }

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type Course struct {
	ID                   uint                      `json:"id" gorm:"primaryKey"`
	Title                string                    `json:"title" gorm:"not null"`
	Slug                 string                    `json:"slug" gorm:"uniqueIndex;not null"`
	Description          string                    `json:"description" gorm:"type:text"`
	Prerequisites        datatypes.JSONSlice[uint] `json:"prerequisites"`
	NeedsPreTest         bool                      `json:"needs_pre_test"`
	NeedsPostTest        bool                      `json:"needs_post_test"`
	MinimumPostTestScore int                       `json:"minimum_post_test_score" gorm:"not null"`
	CreatedAt            time.Time                 `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time                 `json:"updated_at" gorm:"autoUpdateTime"`
}

// DefaultMinimumPostTestScore applies when a course is created without a threshold.
const DefaultMinimumPostTestScore = 70

// Module is one ordered unit of a course. Content fields depend on Type: Body
// for PAGE, FileKey/FileURL for PDF_DOCUMENT, questions for the quiz types.
type Module struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CourseID  uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_module_course_position"`
	Title     string     `json:"title" gorm:"not null"`
	Type      ModuleType `json:"type" gorm:"type:varchar(20);not null"`
	Order     int        `json:"order" gorm:"column:position;not null;uniqueIndex:idx_module_course_position"`
	Body      string     `json:"body,omitempty" gorm:"type:text"`
	FileKey   string     `json:"file_key,omitempty"`
	FileURL   string     `json:"file_url,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Questions []Question `json:"-" gorm:"foreignKey:ModuleID"`
}

type QuestionOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Question struct {
	ID              uint                                `json:"id" gorm:"primaryKey"`
	ModuleID        uint                                `json:"module_id" gorm:"not null;index"`
	Text            string                              `json:"text" gorm:"type:text;not null"`
	Type            QuestionType                        `json:"type" gorm:"type:varchar(20);not null"`
	Options         datatypes.JSONSlice[QuestionOption] `json:"options"`
	CorrectOptionID string                              `json:"correct_option_id" gorm:"not null"`
	Explanation     string                              `json:"explanation,omitempty" gorm:"type:text"`
	Order           int                                 `json:"order" gorm:"column:position"`
	CreatedAt       time.Time                           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                           `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasOption reports whether id names one of the question's options.
func (q *Question) HasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Enrollment links a learner to a course and carries the practical-test and
// certificate workflow state.
type Enrollment struct {
	ID                         uint                `json:"id" gorm:"primaryKey"`
	UserID                     uint                `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID                   uint                `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	EnrolledAt                 time.Time           `json:"enrolled_at"`
	PracticalTestStatus        PracticalTestStatus `json:"practical_test_status" gorm:"type:varchar(40)"`
	AssignedPracticalTest      string              `json:"assigned_practical_test" gorm:"not null;default:''"`
	PracticalTestFileURL       string              `json:"practical_test_file_url"`
	PracticalTestAdminNotes    string              `json:"practical_test_admin_notes" gorm:"type:text"`
	CertificateStatusUpdatedAt *time.Time          `json:"certificate_status_updated_at"`
	CertificateAdminApprovedAt *time.Time          `json:"certificate_admin_approved_at"`
	CertificateRejectionReason string              `json:"certificate_rejection_reason" gorm:"type:text"`
	CreatedAt                  time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt                  time.Time           `json:"updated_at" gorm:"autoUpdateTime"`

	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// UserProgress is the ledger row for one learner and one module.
type UserProgress struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_module"`
	CourseID       uint       `json:"course_id" gorm:"not null;index"`
	ModuleID       uint       `json:"module_id" gorm:"not null;uniqueIndex:idx_progress_user_module"`
	CompletedAt    *time.Time `json:"completed_at"`
	Score          *int       `json:"score"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) Completed() bool { return p != nil && p.CompletedAt != nil }

// ========== RESPONSE DTOs ==========

// ModuleSummary is a catalog entry: the module plus light quiz metadata.
type ModuleSummary struct {
	Module
	QuestionCount int `json:"question_count"`
}

// ModuleState is a catalog entry annotated for one learner.
type ModuleState struct {
	ModuleSummary
	Completed bool `json:"completed"`
	Locked    bool `json:"locked"`
	Score     *int `json:"score,omitempty"`
}

type CourseProgress struct {
	CourseID       uint           `json:"course_id"`
	CourseTitle    string         `json:"course_title"`
	Modules        []ModuleState  `json:"modules"`
	UserProgress   []UserProgress `json:"user_progress"`
	ResumeModuleID *uint          `json:"resume_module_id"`
}

// QuizQuestion is a question as shown on the test screen, without the key.
type QuizQuestion struct {
	ID      uint             `json:"id"`
	Text    string           `json:"text"`
	Type    QuestionType     `json:"type"`
	Options []QuestionOption `json:"options"`
}

type QuestionResult struct {
	QuestionID       uint   `json:"question_id"`
	Text             string `json:"text"`
	SelectedOptionID string `json:"selected_option_id"`
	CorrectOptionID  string `json:"correct_option_id"`
	Correct          bool   `json:"correct"`
	Explanation      string `json:"explanation,omitempty"`
}

type TestResult struct {
	ModuleID     uint             `json:"module_id"`
	ScorePercent int              `json:"score_percent"`
	CorrectCount int              `json:"correct_count"`
	Total        int              `json:"total"`
	NoQuestions  bool             `json:"no_questions,omitempty"`
	Results      []QuestionResult `json:"results"`
}

type EligibilityData struct {
	LearnerName     string     `json:"learner_name"`
	CourseTitle     string     `json:"course_title"`
	PostTestScore   *int       `json:"post_test_score,omitempty"`
	MinimumScore    int        `json:"minimum_score"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	PracticalStatus string     `json:"practical_test_status"`
}

type Eligibility struct {
	Eligible bool             `json:"eligible"`
	Reasons  []string         `json:"reasons,omitempty"`
	Data     *EligibilityData `json:"data,omitempty"`
}

// ImportRowError describes one rejected spreadsheet row (1-based, header is row 1).
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportSummary struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// AdminDashboardData summarises the review queue for administrators.
type AdminDashboardData struct {
	TotalUsers           int `json:"total_users"`
	TotalStudents        int `json:"total_students"`
	TotalCourses         int `json:"total_courses"`
	TotalEnrollments     int `json:"total_enrollments"`
	AwaitingReview       int `json:"awaiting_review"`
	AwaitingCertificate  int `json:"awaiting_certificate"`
	ApprovedCertificates int `json:"approved_certificates"`
}

// FileInfo describes an object held by a FileStore.
type FileInfo struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
