package rest

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/snapster/internal/common"
)

// multipartOverhead is allowed on top of MaxUploadSize for boundaries and part headers.
const multipartOverhead = 1 << 20

var acceptedMediaTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

func (s *HTTPServer) listFiles(c *gin.Context) {
	views, err := s.files.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFileResponses(views))
}

func (s *HTTPServer) getFile(c *gin.Context) {
	view, err := s.files.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFileResponse(*view))
}

func (s *HTTPServer) uploadFile(c *gin.Context) {
	if s.opts.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		writeError(c, formFileError(err))
		return
	}
	if s.opts.MaxUploadSize > 0 && header.Size > s.opts.MaxUploadSize {
		writeError(c, errPayloadTooLarge)
		return
	}

	mediaType, err := uploadMediaType(header.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		writeError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, formFileError(err))
		return
	}

	view, err := s.files.Upload(c.Request.Context(), currentUserID(c), header.Filename, mediaType, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newFileResponse(*view))
}

func formFileError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return errPayloadTooLarge
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return errMissingFile
	default:
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
}

// uploadMediaType returns the bare media type of a part, rejecting anything
// but PNG and JPEG (including the non-standard image/jpg).
func uploadMediaType(contentType string) (string, error) {
	if contentType == "" {
		return "", fmt.Errorf("%w: missing content type", common.ErrInvalidMediaType)
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.Contains(mt, "/") {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidMediaType, contentType)
	}
	if !acceptedMediaTypes[mt] {
		return "", errUnsupportedMediaType
	}
	return mt, nil
}

func (s *HTTPServer) fileContent(c *gin.Context) {
	rc, file, err := s.files.Open(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(path.Ext(file.Name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Type", ct)
	c.Header("Cache-Control", "private, max-age=300")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		s.logger.Warn(c.Request.Context(), "stream file content", "file_id", file.ID, "error", err)
	}
}

func (s *HTTPServer) deleteFile(c *gin.Context) {
	if err := s.files.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
