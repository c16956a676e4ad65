package domain

import "strings"

type ModuleType string

const (
	TypePage         ModuleType = "PAGE"
	TypePreTestQuiz  ModuleType = "PRE_TEST_QUIZ"
	TypePostTestQuiz ModuleType = "POST_TEST_QUIZ"
	TypePDFDocument  ModuleType = "PDF_DOCUMENT"
)

// legacyModuleTypes maps the vocabulary used by old seed scripts and migrations
// onto the canonical variants. Only admin input goes through this table.
var legacyModuleTypes = map[string]ModuleType{
	"text":      TypePage,
	"page":      TypePage,
	"pdf":       TypePDFDocument,
	"pre_test":  TypePreTestQuiz,
	"post_test": TypePostTestQuiz,
}

// ParseModuleType accepts a canonical module type or one of the legacy
// spellings and returns the canonical value.
func ParseModuleType(s string) (ModuleType, error) {
	t := ModuleType(strings.TrimSpace(s))
	if t.Valid() {
		return t, nil
	}
	if canon, ok := legacyModuleTypes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canon, nil
	}
	return "", Validationf("invalid module type %q", s)
}

func (t ModuleType) Valid() bool {
	switch t {
	case TypePage, TypePreTestQuiz, TypePostTestQuiz, TypePDFDocument:
		return true
	}
	return false
}

// IsContent reports whether learners read the module rather than answer it.
func (t ModuleType) IsContent() bool {
	return t == TypePage || t == TypePDFDocument
}

func (t ModuleType) IsQuiz() bool {
	return t == TypePreTestQuiz || t == TypePostTestQuiz
}

// PracticalTestStatus values are stored verbatim in enrollments.practical_test_status.
type PracticalTestStatus string

const (
	StatusNotSubmitted        PracticalTestStatus = "Belum Dikumpulkan"
	StatusSubmitted           PracticalTestStatus = "Sudah Dikumpulkan"
	StatusPassedReview        PracticalTestStatus = "Lulus Penilaian"
	StatusFailedReview        PracticalTestStatus = "Gagal Penilaian"
	StatusCertificateApproved PracticalTestStatus = "Sertifikat Disetujui"
	StatusCertificateRejected PracticalTestStatus = "Sertifikat Ditolak"
)

var practicalTestStatuses = []PracticalTestStatus{
	StatusNotSubmitted,
	StatusSubmitted,
	StatusPassedReview,
	StatusFailedReview,
	StatusCertificateApproved,
	StatusCertificateRejected,
}

func PracticalTestStatuses() []PracticalTestStatus {
	out := make([]PracticalTestStatus, len(practicalTestStatuses))
	copy(out, practicalTestStatuses)
	return out
}

func (s PracticalTestStatus) Valid() bool {
	for _, v := range practicalTestStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// PracticalTestCategories is the fixed pool a practical test is drawn from.
var PracticalTestCategories = []string{"Paha", "Betis", "Pinggang punggung", "Lengan"}

type QuestionType string

const QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
