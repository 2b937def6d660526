package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"medassist-backend/internal/extractor"
	"medassist-backend/internal/model"
	"medassist-backend/internal/service"
	"medassist-backend/internal/storage"
	"medassist-backend/pkg/logger"
)

const sessionNotFoundMessage = "Session not found. Please upload a PDF first."

type MedicalService interface {
	AnalyzeDocument(ctx context.Context, doc extractor.Document, symptoms string) (*model.AnalyzeResponse, error)
	ContinueChat(ctx context.Context, sessionID, message string) (string, error)
	Session(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	SessionCount() int
}

type MedicalHandler struct {
	service        MedicalService
	provider       string
	maxUploadBytes int64
}

func NewMedicalHandler(svc MedicalService, provider string, maxUploadBytes int64) *MedicalHandler {
	return &MedicalHandler{
		service:        svc,
		provider:       provider,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *MedicalHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello, medassist is working!"})
}

func (h *MedicalHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:   "ok",
		Provider: h.provider,
		Sessions: h.service.SessionCount(),
	})
}

// AnalyzeHistory accepts a multipart upload with a PDF in "file" and the
// current symptoms in "problem".
func (h *MedicalHandler) AnalyzeHistory(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		logger.Warnf("parse multipart form: %v", err)
		abortWithError(c, http.StatusBadRequest, "Upload must be multipart form data no larger than the configured limit")
		return
	}
	defer func() {
		// Spooled parts are removed here; failures are logged, never returned.
		if err := c.Request.MultipartForm.RemoveAll(); err != nil {
			logger.Warnf("remove multipart temp files: %v", err)
		}
	}()

	var form model.AnalyzeForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, http.StatusBadRequest, "Form field 'problem' is required")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Form field 'file' is required")
		return
	}
	if !extractor.IsPDF(header.Filename) {
		abortWithError(c, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	file, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	resp, err := h.service.AnalyzeDocument(c.Request.Context(), extractor.Document{
		Name: header.Filename,
		Data: data,
	}, form.Problem)
	if err != nil {
		h.writeError(c, "analyze medical history", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MedicalHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.service.ContinueChat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeError(c, "continue chat", err)
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{Response: reply})
}

func (h *MedicalHandler) GetSession(c *gin.Context) {
	resp, err := h.service.Session(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.writeError(c, "get session", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MedicalHandler) writeError(c *gin.Context, op string, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusNotFound {
		message = sessionNotFoundMessage
	}

	entry := logger.WithFields(logger.Fields{"op": op, "status": status})
	if status >= http.StatusInternalServerError {
		entry.Errorf("%s failed: %v", op, err)
	} else {
		entry.Warnf("%s rejected: %v", op, err)
	}

	abortWithError(c, status, message)
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, extractor.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Error: message})
}
