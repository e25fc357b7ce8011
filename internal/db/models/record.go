package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Field names for the generation record model
const (
	// RecordStatusField is the field name for the generation status
	RecordStatusField = "status"
	// RecordJobIDField is the field name for the external job id
	RecordJobIDField = "external_job_id"
)

// GenerationStatus represents the current state of a generation cycle
type GenerationStatus string

// Generation status constants
const (
	// StatusNone indicates no generation has been requested for the item
	StatusNone GenerationStatus = "none"
	// StatusQueued indicates the item has been submitted and is waiting on the service
	StatusQueued GenerationStatus = "queued"
	// StatusRunning indicates the external job is in progress
	StatusRunning GenerationStatus = "running"
	// StatusCompleted indicates content was generated for the current cycle
	StatusCompleted GenerationStatus = "completed"
	// StatusError indicates the cycle failed
	StatusError GenerationStatus = "error"
)

// String returns the string representation of the generation status
func (s GenerationStatus) String() string {
	return string(s)
}

// Terminal reports whether the status is a terminal state for the cycle
func (s GenerationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// ParseGenerationStatus converts a string to a GenerationStatus
func ParseGenerationStatus(str string) (GenerationStatus, error) {
	switch str {
	case string(StatusNone):
		return StatusNone, nil
	case string(StatusQueued):
		return StatusQueued, nil
	case string(StatusRunning):
		return StatusRunning, nil
	case string(StatusCompleted):
		return StatusCompleted, nil
	case string(StatusError):
		return StatusError, nil
	default:
		return StatusNone, fmt.Errorf("invalid generation status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for GenerationStatus
func (s *GenerationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseGenerationStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// MarshalJSON implements json.Marshaler for GenerationStatus
func (s *GenerationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Mode determines whether generated content is committed automatically or
// held as a draft for review
type Mode string

// Generation modes
const (
	// ModeReview holds generated content as a draft pending human action
	ModeReview Mode = "review"
	// ModeAutoApply commits generated content to the live item without review
	ModeAutoApply Mode = "auto-apply"
)

// ParseMode converts a string to a Mode
func ParseMode(str string) (Mode, error) {
	switch str {
	case string(ModeReview):
		return ModeReview, nil
	case string(ModeAutoApply):
		return ModeAutoApply, nil
	default:
		return ModeReview, fmt.Errorf("invalid generation mode: %s", str)
	}
}

// GenerationRecord tracks the lifecycle of one item's description generation
// cycle. Absence of a record is equivalent to StatusNone.
type GenerationRecord struct {
	ItemID        uint             `json:"item_id" gorm:"primaryKey;autoIncrement:false"`
	Status        GenerationStatus `json:"status" gorm:"not null;index"`
	Mode          Mode             `json:"mode" gorm:"not null;default:review"`
	ExternalJobID string           `json:"external_job_id,omitempty" gorm:"index"`
	DraftContent  string           `json:"draft_content,omitempty" gorm:"type:text"`
	Delivered     bool             `json:"delivered" gorm:"not null;default:false"`
	Declined      bool             `json:"declined" gorm:"not null;default:false"`
	LastError     string           `json:"last_error,omitempty" gorm:"type:text"`
	LastUpdatedAt time.Time        `json:"last_updated_at" gorm:"autoUpdateTime"`
}

// NeedsReview reports whether the record holds a draft awaiting a human
// accept/decline decision
func (r *GenerationRecord) NeedsReview() bool {
	return r.Status == StatusCompleted && r.DraftContent != "" && !r.Delivered && !r.Declined
}

// LiveJob reports whether an external job is still expected to report back
func (r *GenerationRecord) LiveJob() bool {
	return r.ExternalJobID != "" && (r.Status == StatusQueued || r.Status == StatusRunning)
}

// ResetCycle clears all cycle state, returning the record to StatusNone
func (r *GenerationRecord) ResetCycle() {
	r.Status = StatusNone
	r.Mode = ModeReview
	r.ExternalJobID = ""
	r.DraftContent = ""
	r.Delivered = false
	r.Declined = false
	r.LastError = ""
}

// Validate ensures that the record data is consistent
func (r *GenerationRecord) Validate() error {
	if r.ItemID == 0 {
		return fmt.Errorf("record item id cannot be zero")
	}
	if r.Delivered && r.Declined {
		return fmt.Errorf("record cannot be both delivered and declined")
	}
	if r.ExternalJobID != "" && r.Status.Terminal() {
		return fmt.Errorf("external job id must be cleared on terminal status %q", r.Status)
	}
	return nil
}
