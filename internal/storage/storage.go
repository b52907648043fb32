// Package storage keeps uploaded files on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Object describes a stored upload.
type Object struct {
	Key string
	// Path is the server-relative path clients embed in rich text.
	Path string
	URL  string
}

// Service stores uploaded files.
type Service interface {
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Object, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds the key "<unix-millis>-<sanitised name>" for an upload.
func ObjectKey(originalName string, now time.Time) string {
	name := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}
