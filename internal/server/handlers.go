// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/essay-engine/internal/attach"
	"github.com/pdiddy/essay-engine/internal/export"
	"github.com/pdiddy/essay-engine/internal/logging"
	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/apperrors"
	"github.com/pdiddy/essay-engine/pkg/types"
)

// generationFailed is the only failure text callers see; the kind goes to
// the logs.
const generationFailed = "Generation failed. Please try again."

type attachmentDTO struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateRequest struct {
	types.RequestConfig
	Attachment     *attachmentDTO `json:"attachment"`
	AttachmentText string         `json:"attachmentText"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	body := generateRequest{RequestConfig: types.DefaultRequestConfig()}
	if !s.bindJSON(c, &body) {
		return
	}

	att, err := body.attachment(ctx, s.ext)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	req, err := s.builder.Build(body.RequestConfig, att)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if !s.sem.TryAcquire(1) {
		c.JSON(http.StatusTooManyRequests, errorBody("A generation is already running. Please wait."))
		return
	}
	defer s.sem.Release(1)

	essay, err := s.gen.Invoke(ctx, req)
	if err != nil {
		logger.Warn("generate request failed", "kind", apperrors.KindOf(err))
		c.JSON(http.StatusBadGateway, errorBody(generationFailed))
		return
	}
	c.JSON(http.StatusOK, essay)
}

// attachment converts the wire form to the tagged attachment. Sending both
// forms is rejected. Uploads go through the same checks as files on disk:
// the name's extension picks the handling, and a declared MIME type must be
// one of the accepted document types and agree with it.
func (r generateRequest) attachment(ctx context.Context, ext attach.Extractor) (request.Attachment, error) {
	switch {
	case r.Attachment != nil && r.AttachmentText != "":
		return nil, errors.New("send either attachment or attachmentText, not both")
	case r.Attachment != nil:
		name, err := uploadName(r.Attachment.Name, r.Attachment.MIMEType)
		if err != nil {
			return nil, err
		}
		decoded, err := request.BinaryFromBase64(name, r.Attachment.MIMEType, r.Attachment.Data)
		if err != nil {
			return nil, err
		}
		return attach.FromBytes(ctx, name, decoded.Data, ext)
	case r.AttachmentText != "":
		return request.ExtractedText{Text: r.AttachmentText}, nil
	default:
		return nil, nil
	}
}

const mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// uploadExts maps the accepted upload MIME types to file extensions.
var uploadExts = map[string]string{
	"application/pdf": ".pdf",
	mimeDocx:          ".docx",
	"text/plain":      ".txt",
	"text/markdown":   ".md",
}

// uploadName returns the file name used to classify an upload. An empty
// MIME type defers to the name; an empty name or one without an extension
// takes the extension of the MIME type.
func uploadName(name, mimeType string) (string, error) {
	mimeType = strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	if mimeType == "" {
		if name == "" {
			name = "attachment.pdf"
		}
		return name, nil
	}

	want, ok := uploadExts[mimeType]
	if !ok {
		return "", apperrors.Newf(apperrors.KindAttachmentUnreadable,
			"unsupported attachment type %q (want PDF, Word .docx, plain text or Markdown)", mimeType)
	}
	if name == "" {
		name = "attachment"
	}
	got := strings.ToLower(filepath.Ext(name))
	switch {
	case got == "":
		return name + want, nil
	case got != want:
		return "", apperrors.Newf(apperrors.KindAttachmentUnreadable,
			"attachment %s does not match its declared type %s", name, mimeType)
	}
	return name, nil
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorBody(err.Error()))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody("request body too large"))
		return
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("body is not valid JSON"))
		return
	}
	var essay types.Essay
	if err := request.EssayContract().Decode(v, &essay); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}

	f, err := export.Render(format, &essay, s.labels)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("export failed", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("export failed"))
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveExport(string(format))
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(f.Name))
	c.Data(http.StatusOK, f.MIMEType, f.Data)
}

// bindJSON decodes a size-limited JSON body into v, writing a 4xx on failure.
func (s *Server) bindJSON(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return false
		}
		c.JSON(http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}
