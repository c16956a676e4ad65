package utils

import (
	"path/filepath"
	"strings"
)

// DetectContentType guesses a MIME type from the file extension.
func DetectContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

// IsAllowedFileType checks the content type first and falls back to the extension.
func IsAllowedFileType(contentType, filename string, allowed ...string) bool {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = DetectContentType(filename)
	}
	for _, a := range allowed {
		if strings.HasSuffix(a, "/") {
			if strings.HasPrefix(contentType, a) {
				return true
			}
			continue
		}
		if contentType == a {
			return true
		}
	}
	return false
}
