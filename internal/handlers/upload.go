package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/response"
	"github.com/stackit-qa/stackit/backend/internal/storage"
)

// multipartOverhead leaves room for the form framing around the file part.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	store   storage.Service
	maxSize int64
	now     func() time.Time
	logger  logrus.FieldLogger
}

func NewUploadHandler(store storage.Service, maxSize int64, logger logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{store: store, maxSize: maxSize, now: time.Now, logger: logger}
}

type uploadView struct {
	FilePath string `json:"filePath"`
	FullURL  string `json:"fullUrl"`
}

// Upload stores the multipart field "file" and returns where it is served.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, h.tooLarge(), h.logger)
			return
		}
		response.Error(c, apperr.Validation("No file uploaded"), h.logger)
		return
	}
	if fh.Size > h.maxSize {
		response.Error(c, h.tooLarge(), h.logger)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, apperr.Internal("open upload", err), h.logger)
		return
	}
	defer f.Close()

	key := storage.ObjectKey(fh.Filename, h.now())
	obj, err := h.store.Save(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, apperr.Internal("store upload", err), h.logger)
		return
	}

	h.logger.WithFields(logrus.Fields{"key": obj.Key, "size": fh.Size, "user_id": caller(c).UserID}).Info("file uploaded")
	response.Created(c, "File uploaded successfully", uploadView{
		FilePath: obj.Path,
		FullURL:  absoluteURL(c, obj.URL),
	})
}

func (h *UploadHandler) tooLarge() *apperr.Error {
	return apperr.Validation(fmt.Sprintf("File exceeds the %d byte limit", h.maxSize))
}

// absoluteURL resolves a server-relative url against the request host.
func absoluteURL(c *gin.Context, u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + u
}
