package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindServer ErrorKind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "Conflict"
	case KindForbidden:
		return "Forbidden"
	case KindUnauthorized:
		return "Unauthorized"
	default:
		return "ServerError"
	}
}

// Error is a caller-facing failure. Anything that is not an *Error is treated
// as a server fault by the delivery layer.
type Error struct {
	Kind    ErrorKind
	Message string
	// Reasons carries the checklist shown when a certificate is not yet available.
	Reasons []string
}

func (e *Error) Error() string { return e.Message }

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func newError(kind ErrorKind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func NotFoundf(format string, args ...any) *Error {
	return newError(KindNotFound, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...any) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) *Error {
	return newError(KindConflict, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) *Error {
	return newError(KindForbidden, fmt.Sprintf(format, args...))
}

// WithReasons returns a copy of e carrying reasons.
func (e *Error) WithReasons(reasons []string) *Error {
	cp := *e
	cp.Reasons = reasons
	return &cp
}

// KindOf returns the kind of err, KindServer for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServer
}

var (
	ErrCourseNotFound     = newError(KindNotFound, "course not found")
	ErrModuleNotFound     = newError(KindNotFound, "module not found")
	ErrQuestionNotFound   = newError(KindNotFound, "question not found")
	ErrEnrollmentNotFound = newError(KindNotFound, "enrollment not found")
	ErrUserNotFound       = newError(KindNotFound, "user not found")
	ErrFileNotFound       = newError(KindNotFound, "file not found")
	ErrNoModulesAvailable = newError(KindNotFound, "course has no modules")

	ErrRejectionReasonRequired    = newError(KindValidation, "rejection reason is required")
	ErrPracticalTestNotAssigned   = newError(KindValidation, "practical test has not been assigned")
	ErrPostTestNotCompleted       = newError(KindValidation, "post-test must be completed first")
	ErrNotQuizModule              = newError(KindValidation, "module is not a quiz")
	ErrNotContentModule           = newError(KindValidation, "module is not a content module")
	ErrInvalidScore               = newError(KindValidation, "score must be between 0 and 100")
	ErrInvalidPracticalTestStatus = newError(KindValidation, "invalid practical test status")

	ErrSlugTaken          = newError(KindConflict, "slug already in use")
	ErrEmailTaken         = newError(KindConflict, "email already registered")
	ErrModuleOrderTaken   = newError(KindConflict, "module order already used in this course")
	ErrDuplicateTestQuiz  = newError(KindConflict, "course already has a module of this test type")
	ErrAlreadyEnrolled    = newError(KindConflict, "already enrolled in this course")
	ErrAlreadyAssigned    = newError(KindConflict, "practical test already assigned")
	ErrPassedReviewNeeded = newError(KindConflict, "practical test has not passed review")

	ErrNotEnrolled             = newError(KindForbidden, "not enrolled in this course")
	ErrModuleLocked            = newError(KindForbidden, "module is locked")
	ErrPrerequisitesIncomplete = newError(KindForbidden, "course prerequisites are not completed")
	ErrCertificateNotApproved  = newError(KindForbidden, "certificate is not available yet")

	ErrInvalidCredentials = newError(KindUnauthorized, "invalid credentials")
)
