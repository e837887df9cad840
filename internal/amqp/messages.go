package amqp

import (
	"encoding/json"
	"time"
)

// UploadCompletedMessage announces that an ingestion replaced the vendor
// collection. It carries only identifiers and counts; consumers fetch the
// actual aggregates from the store.
type UploadCompletedMessage struct {
	UploadID  string    `json:"upload_id"`
	Filename  string    `json:"filename"`
	Vendors   int       `json:"vendors"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUploadCompletedMessage(uploadID, filename string, vendors, rows int) *UploadCompletedMessage {
	return &UploadCompletedMessage{
		UploadID:  uploadID,
		Filename:  filename,
		Vendors:   vendors,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

func (m *UploadCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func UploadCompletedMessageFromJSON(data []byte) (*UploadCompletedMessage, error) {
	var msg UploadCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
