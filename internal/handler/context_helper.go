package handler

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
)

// requiredParam reads a non-blank path parameter.
func requiredParam(c *gin.Context, name string) (string, error) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	return value, nil
}

// attachmentDisposition builds a Content-Disposition value that keeps non-ASCII
// filenames intact for clients supporting RFC 6266 and an ASCII fallback for the rest.
func attachmentDisposition(filename string) string {
	fallback := asciiFallback(filename)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, url.PathEscape(filename))
}

func asciiFallback(filename string) string {
	ext := filepath.Ext(filename)
	var b strings.Builder
	for _, r := range strings.TrimSuffix(filename, ext) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	base := strings.Trim(b.String(), ".")
	if base == "" {
		base = "report"
	}
	return base + ext
}
