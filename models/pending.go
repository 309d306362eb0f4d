package models

import (
	"strings"
	"time"

	"github.com/instantlly/ads-admin/apierrors"
)

// Moderation statuses for channel partner submissions.
const (
	ModerationStatusPending  = "pending"
	ModerationStatusApproved = "approved"
	ModerationStatusRejected = "rejected"
)

// Valid moderation transitions: from -> []to. Approved and rejected are
// terminal; a submission never returns to pending.
var ValidModerationTransitions = map[string][]string{
	ModerationStatusPending:  {ModerationStatusApproved, ModerationStatusRejected},
	ModerationStatusApproved: {},
	ModerationStatusRejected: {},
}

func IsValidModerationTransition(from, to string) bool {
	allowed, ok := ValidModerationTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// PendingAd is a channel partner submission awaiting review. Image fields
// are references only; the submission never carries inline image bytes.
type PendingAd struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	PhoneNumber       string    `json:"phoneNumber"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	Status            string    `json:"status"`
	UploadedBy        string    `json:"uploadedBy"`
	UploaderName      string    `json:"uploaderName"`
	Priority          int       `json:"priority"`
	BottomImageID     string    `json:"bottomImageId,omitempty"`
	FullscreenImageID string    `json:"fullscreenImageId,omitempty"`
	Impressions       int64     `json:"impressions"`
	Clicks            int64     `json:"clicks"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DisplayStatusAt derives the submission's display status at the given
// instant, independent of moderation state.
func (p *PendingAd) DisplayStatusAt(now time.Time) DisplayStatus {
	return DisplayStatusAt(now, p.StartDate, p.EndDate)
}

// Priority bounds for approved ads. Higher priority means more frequent
// display.
const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

// ValidatePriority checks the admin-assigned display priority before it is
// sent to the backend.
func ValidatePriority(priority int) error {
	if priority < MinPriority || priority > MaxPriority {
		return &apierrors.ValidationError{
			Field:   "priority",
			Message: "must be between 1 and 10",
		}
	}
	return nil
}

// ValidateRejectionReason checks the mandatory rejection reason.
func ValidateRejectionReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return &apierrors.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		}
	}
	return nil
}

// ValidateSchedule checks the date range the way the admin form does. The
// backend is not assumed to re-validate.
func ValidateSchedule(startDate, endDate time.Time) error {
	if startDate.IsZero() {
		return &apierrors.ValidationError{Field: "startDate", Message: "start date is required"}
	}
	if endDate.IsZero() {
		return &apierrors.ValidationError{Field: "endDate", Message: "end date is required"}
	}
	if endDate.Before(startDate) {
		return &apierrors.ValidationError{Field: "endDate", Message: "end date must not precede start date"}
	}
	return nil
}
