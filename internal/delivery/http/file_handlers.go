package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"kursus-backend/internal/repository"
	"kursus-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// formFile reads the "file" field and enforces the upload limit.
func formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, repository.MaxUploadSize+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondFail(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large. Maximum is %dMB", repository.MaxUploadSize/(1024*1024)), nil)
			return nil, nil, false
		}
		respondFail(c, http.StatusBadRequest, "File is required", nil)
		return nil, nil, false
	}
	if header.Size > repository.MaxUploadSize {
		file.Close()
		respondFail(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large. Maximum is %dMB", repository.MaxUploadSize/(1024*1024)), nil)
		return nil, nil, false
	}
	return file, header, true
}

// SubmitPracticalTest accepts the learner's practical-test evidence.
func (h *Handler) SubmitPracticalTest(c *gin.Context) {
	userID, identifier, ok := learner(c)
	if !ok {
		return
	}
	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	enrollment, err := h.CertificateUsecase.SubmitPracticalTest(
		c.Request.Context(), userID, identifier,
		header.Filename, file, header.Size, header.Header.Get("Content-Type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Practical test submitted", enrollment)
}

// UploadModuleFile attaches a PDF to a PDF_DOCUMENT module.
func (h *Handler) UploadModuleFile(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "moduleId", "module")
	if !ok {
		return
	}
	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	module, err := h.CatalogUsecase.UploadModuleFile(
		c.Request.Context(), moduleID,
		header.Filename, file, header.Size, header.Header.Get("Content-Type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "File uploaded", module)
}

// ImportUsers creates accounts from an uploaded xlsx workbook.
func (h *Handler) ImportUsers(c *gin.Context) {
	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	if !strings.EqualFold(path.Ext(header.Filename), ".xlsx") {
		respondFail(c, http.StatusBadRequest, "Only .xlsx files are supported", nil)
		return
	}

	summary, err := h.UserUsecase.ImportUsers(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Import finished", summary)
}

// ServeFile streams a stored object. PDFs, images and videos open inline.
func (h *Handler) ServeFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		respondFail(c, http.StatusBadRequest, "File key is required", nil)
		return
	}

	stream, info, err := h.Files.Open(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	defer stream.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := "attachment"
	if contentType == "application/pdf" ||
		strings.HasPrefix(contentType, "image/") ||
		strings.HasPrefix(contentType, "video/") {
		disposition = "inline"
	}

	c.Header("Content-Type", contentType)
	if info.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, path.Base(key)))
	c.Header("Access-Control-Expose-Headers", "Content-Disposition, Content-Length")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		logger.Log.Warn("error streaming file", zap.String("key", key), zap.Error(err))
	}
}
