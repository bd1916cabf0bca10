package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunID represents a UUIDv7 identifier for one sync pass.
type RunID string

// NewRunID generates a fresh UUIDv7 run identifier.
func NewRunID() (RunID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run-id: %w", err)
	}
	return RunID(id.String()), nil
}

// Validate checks that the RunID is a valid UUIDv7.
func (r RunID) Validate() error {
	if r == "" {
		return fmt.Errorf("run-id cannot be empty")
	}
	id, err := uuid.Parse(string(r))
	if err != nil {
		return fmt.Errorf("run-id must be a valid UUID: %w", err)
	}
	if id.Version() != uuid.Version(7) {
		return fmt.Errorf("run-id must be a UUIDv7, got v%d", id.Version())
	}
	return nil
}

// String returns the run ID as a string.
func (r RunID) String() string {
	return string(r)
}

// UploadStatus is the upload state of a part row.
type UploadStatus int

const (
	StatusPending UploadStatus = iota
	StatusSuccess
	StatusFailed
	StatusFileNotFound
)

// ParseUploadStatus converts the Upload_Status text of a row.
// Unknown text is treated as pending.
func ParseUploadStatus(s string) UploadStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return StatusSuccess
	case "failed":
		return StatusFailed
	case "file not found":
		return StatusFileNotFound
	default:
		return StatusPending
	}
}

// String returns the text written back to the table.
func (s UploadStatus) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailed:
		return "Failed"
	case StatusFileNotFound:
		return "File Not Found"
	default:
		return ""
	}
}

// ParseUploadRequested reports whether an Upload_to_Minio value asks for an upload.
func ParseUploadRequested(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true":
		return true
	default:
		return false
	}
}

// PartRow is one drawing file tracked in the parts table.
type PartRow struct {
	ID              int64
	Ready           bool
	UploadRequested bool
	Status          UploadStatus
	Filename        string
	FolderPath      string
	Thickness       string
	ProductPrefix   string
}

// StatusUpdate is the outcome written back to a row.
type StatusUpdate struct {
	Status     UploadStatus
	ObjectURL  string     // set only on success
	UploadedOn *time.Time // nil clears the column
}

// Uploaded builds the update for a successful upload.
func Uploaded(url string, at time.Time) StatusUpdate {
	return StatusUpdate{Status: StatusSuccess, ObjectURL: url, UploadedOn: &at}
}

// UploadFailed builds the update for a failed upload.
func UploadFailed() StatusUpdate {
	return StatusUpdate{Status: StatusFailed}
}

// FileNotFound builds the update for a row whose local file is missing.
func FileNotFound() StatusUpdate {
	return StatusUpdate{Status: StatusFileNotFound}
}
