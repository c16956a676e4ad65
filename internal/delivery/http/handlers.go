package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"kursus-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	AuthUsecase        domain.AuthUsecase
	UserUsecase        domain.UserUsecase
	CatalogUsecase     domain.CatalogUsecase
	EnrollmentUsecase  domain.EnrollmentUsecase
	ProgressUsecase    domain.ProgressUsecase
	QuizUsecase        domain.QuizUsecase
	CertificateUsecase domain.CertificateUsecase
	DashboardUsecase   domain.DashboardUsecase
	Files              domain.FileStore
}

func NewHandler(
	au domain.AuthUsecase,
	uu domain.UserUsecase,
	cu domain.CatalogUsecase,
	eu domain.EnrollmentUsecase,
	pu domain.ProgressUsecase,
	qu domain.QuizUsecase,
	certu domain.CertificateUsecase,
	du domain.DashboardUsecase,
	files domain.FileStore,
) *Handler {
	return &Handler{
		AuthUsecase:        au,
		UserUsecase:        uu,
		CatalogUsecase:     cu,
		EnrollmentUsecase:  eu,
		ProgressUsecase:    pu,
		QuizUsecase:        qu,
		CertificateUsecase: certu,
		DashboardUsecase:   du,
		Files:              files,
	}
}

// ========== UTILITY FUNCTIONS ==========

var errNoUser = errors.New("user ID not found in token")

func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, errNoUser
	}
	id, ok := userID.(uint)
	if !ok {
		return 0, errNoUser
	}
	return id, nil
}

// learner returns the caller id and the :identifier path value.
func learner(c *gin.Context) (uint, string, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, err.Error(), nil)
		return 0, "", false
	}
	return userID, c.Param("identifier"), true
}

func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondFail(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID", label), nil)
		return 0, false
	}
	return uint(id), true
}

// ========== AUTH HANDLERS ==========

func (h *Handler) Login(c *gin.Context) {
	var creds struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := h.AuthUsecase.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", gin.H{"token": token})
}

// ========== COURSE HANDLERS ==========

func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.CatalogUsecase.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{
		"courses": courses,
		"count":   len(courses),
	})
}

func (h *Handler) GetCourse(c *gin.Context) {
	course, modules, err := h.CatalogUsecase.ListModules(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{
		"course":  course,
		"modules": modules,
	})
}

func (h *Handler) EnrollCourse(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}

	enrollment, err := h.EnrollmentUsecase.Enroll(c.Request.Context(), userID, identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Successfully enrolled in course", enrollment)
}

func (h *Handler) MyEnrollments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	enrollments, err := h.EnrollmentUsecase.MyEnrollments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", enrollments)
}

// ========== PROGRESS HANDLERS ==========

func (h *Handler) GetCourseProgress(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}

	progress, err := h.ProgressUsecase.GetCourseProgress(c.Request.Context(), userID, identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", progress)
}

func (h *Handler) ResumePoint(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}

	module, err := h.ProgressUsecase.ResumePoint(c.Request.Context(), userID, identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", module)
}

func (h *Handler) OpenModule(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}

	state, err := h.ProgressUsecase.OpenModule(c.Request.Context(), userID, identifier, moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", state)
}

func (h *Handler) CompleteModule(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}

	row, err := h.ProgressUsecase.CompleteModule(c.Request.Context(), userID, identifier, moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Module marked as completed", row)
}

func (h *Handler) RecordScore(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}

	var req struct {
		Score *int `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	row, err := h.ProgressUsecase.RecordScore(c.Request.Context(), userID, identifier, moduleID, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Score recorded", row)
}

// ========== QUIZ HANDLERS ==========

func (h *Handler) GetQuiz(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}

	questions, err := h.QuizUsecase.GetQuiz(c.Request.Context(), userID, identifier, moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{
		"module_id": moduleID,
		"questions": questions,
	})
}

func (h *Handler) SubmitTest(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}

	// answers maps question id to the chosen option id.
	var req struct {
		Answers map[uint]string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.QuizUsecase.SubmitTest(c.Request.Context(), userID, identifier, moduleID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Test submitted", result)
}

// ========== CERTIFICATE HANDLERS ==========

func (h *Handler) AssignPracticalTest(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}

	enrollment, err := h.CertificateUsecase.AssignPracticalTest(c.Request.Context(), userID, identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Practical test assigned", gin.H{
		"assigned_practical_test": enrollment.AssignedPracticalTest,
		"enrollment":              enrollment,
	})
}

func (h *Handler) CheckEligibility(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}

	eligibility, err := h.CertificateUsecase.CheckEligibility(c.Request.Context(), userID, identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", eligibility)
}

// DownloadCertificate renders into memory first so a refusal can still be
// answered with a JSON envelope.
func (h *Handler) DownloadCertificate(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.CertificateUsecase.DownloadCertificate(c.Request.Context(), userID, identifier, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"sertifikat-%s.pdf\"", identifier))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
