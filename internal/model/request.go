package model

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

// AnalyzeForm is the multipart form of the upload endpoint; the file itself is
// read separately from the "file" field.
type AnalyzeForm struct {
	Problem string `form:"problem" binding:"required"`
}
