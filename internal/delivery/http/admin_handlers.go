package http

import (
	"net/http"

	"kursus-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// ========== DASHBOARD & USERS ==========

func (h *Handler) GetAdminDashboard(c *gin.Context) {
	data, err := h.DashboardUsecase.GetAdminDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", data)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role" binding:"omitempty,oneof=student admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}
	if err := h.AuthUsecase.Register(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "User created", user)
}

// ========== COURSE ADMIN ==========

func (h *Handler) CreateCourse(c *gin.Context) {
	var in domain.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	course, err := h.CatalogUsecase.CreateCourse(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Course created", course)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	var in domain.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	course, err := h.CatalogUsecase.UpdateCourse(c.Request.Context(), c.Param("identifier"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Course updated", course)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	if err := h.CatalogUsecase.DeleteCourse(c.Request.Context(), c.Param("identifier")); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Course deleted", nil)
}

func (h *Handler) ListEnrollments(c *gin.Context) {
	status := domain.PracticalTestStatus(c.Query("status"))
	enrollments, err := h.CertificateUsecase.ListEnrollments(c.Request.Context(), c.Param("identifier"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", enrollments)
}

// ========== MODULE ADMIN ==========

func (h *Handler) CreateModule(c *gin.Context) {
	var in domain.ModuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	module, err := h.CatalogUsecase.CreateModule(c.Request.Context(), c.Param("identifier"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Module created", module)
}

func (h *Handler) UpdateModule(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}
	var in domain.ModuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	module, err := h.CatalogUsecase.UpdateModule(c.Request.Context(), moduleID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Module updated", module)
}

func (h *Handler) DeleteModule(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}

	if err := h.CatalogUsecase.DeleteModule(c.Request.Context(), moduleID); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Module deleted", nil)
}

func (h *Handler) ReorderModules(c *gin.Context) {
	var req struct {
		ModuleIDs []uint `json:"module_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	modules, err := h.CatalogUsecase.ReorderModules(c.Request.Context(), c.Param("identifier"), req.ModuleIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Modules reordered", modules)
}

// ========== QUESTION ADMIN ==========

func (h *Handler) ListQuestions(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}

	questions, err := h.CatalogUsecase.ListQuestions(c.Request.Context(), moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", questions)
}

func (h *Handler) CreateQuestion(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}
	var in domain.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	q, err := h.CatalogUsecase.CreateQuestion(c.Request.Context(), moduleID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Question created", q)
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "questionId", "question")
	if !ok {
		return
	}
	var in domain.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	q, err := h.CatalogUsecase.UpdateQuestion(c.Request.Context(), questionID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Question updated", q)
}

func (h *Handler) DeleteQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "questionId", "question")
	if !ok {
		return
	}

	if err := h.CatalogUsecase.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Question deleted", nil)
}

// ========== PRACTICAL TEST & CERTIFICATE ADMIN ==========

func (h *Handler) ReviewPracticalTest(c *gin.Context) {
	enrollmentID, ok := parseIDParam(c, "enrollmentId", "enrollment")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	enrollment, err := h.CertificateUsecase.ReviewPracticalTest(c.Request.Context(), enrollmentID, domain.PracticalTestStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Practical test reviewed", enrollment)
}

func (h *Handler) ApproveCertificate(c *gin.Context) {
	enrollmentID, ok := parseIDParam(c, "enrollmentId", "enrollment")
	if !ok {
		return
	}

	enrollment, err := h.CertificateUsecase.ApproveCertificate(c.Request.Context(), enrollmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Certificate approved", enrollment)
}

func (h *Handler) RejectCertificate(c *gin.Context) {
	enrollmentID, ok := parseIDParam(c, "enrollmentId", "enrollment")
	if !ok {
		return
	}
	// reason is checked by the usecase so an empty one gets the domain message.
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	enrollment, err := h.CertificateUsecase.RejectCertificate(c.Request.Context(), enrollmentID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Certificate rejected", enrollment)
}
