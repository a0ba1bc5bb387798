package fileService

import (
	"path"
	"regexp"
	"slices"
	"strings"

	"commercial-file-service/pkg/apperr"
)

var (
	allowedExtensions = []string{"pdf", "doc", "docx", "xls", "xlsx", "csv", "txt"}
	blockedExtensions = []string{"exe", "bat", "sh", "jar", "js", "php", "py", "html", "htm", "zip", "rar", "7z"}

	allowedContentTypes = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/csv",
		"text/plain",
		"application/vnd.ms-excel.sheet.macroEnabled.12",
		"application/vnd.ms-excel.sheet.binary.macroEnabled.12",
	}

	versionPattern = regexp.MustCompile(`^\d+\.\d+$`)
)

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

func (s *FileService) validateContent(c *Content) error {
	if c == nil || c.Reader == nil || c.Size <= 0 {
		return apperr.Validation("file is empty or not provided")
	}
	if c.Size > s.maxSize {
		return apperr.Validation("file size exceeds maximum allowed size (%dMB)", s.maxSize/(1024*1024))
	}

	ext := extension(c.Name)
	if ext == "" {
		return apperr.Validation("file must have an extension")
	}
	if slices.Contains(blockedExtensions, ext) {
		return apperr.Validation("file type .%s is not allowed for security reasons", ext)
	}
	if !slices.Contains(allowedExtensions, ext) {
		return apperr.Validation("file type .%s is not supported. Allowed types: %s", ext, strings.Join(allowedExtensions, ", "))
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(c.ContentType, ";")[0]))
	if !slices.Contains(allowedContentTypes, contentType) && !strings.HasPrefix(contentType, "text/") {
		return apperr.Validation("content type %q is not supported", c.ContentType)
	}
	return nil
}

func validateVersion(v string) error {
	if !versionPattern.MatchString(v) {
		return apperr.Validation("version %q must look like <major>.<minor>", v)
	}
	return nil
}
