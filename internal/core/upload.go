package core

import "time"

// Upload is the metadata kept for every ingestion attempt, successful or
// not. FileHash is the sha256 of the uploaded content and backs duplicate
// detection.
type Upload struct {
	ID       string    `json:"upload_id"`
	Filename string    `json:"filename"`
	FileHash string    `json:"file_hash"`
	At       time.Time `json:"timestamp"`
	Rows     int       `json:"rows"`
	Error    string    `json:"error,omitempty"`
}
