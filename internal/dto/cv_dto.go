package dto

import "time"

// UploadTextRequest is the JSON body of POST /cv/upload and /cv/upload-text.
type UploadTextRequest struct {
	Text     string `json:"text"`
	FileName string `json:"fileName,omitempty"`
}

type JobMatchRequest struct {
	JobDescription string `json:"jobDescription"`
}

type MessageDTO struct {
	Message string `json:"message"`
}

type HealthDTO struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
