// Package repository exposes the typed resource operations of the ads
// backend. It attaches no business meaning to failures: everything except
// local validation passes through from the gateway client untouched.
package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/instantlly/ads-admin/apierrors"
	"github.com/instantlly/ads-admin/models"
)

// Doer is the request entry point the repository runs on. *apiclient.Client
// satisfies it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type AdsRepository struct {
	client Doer
}

func NewAdsRepository(client Doer) *AdsRepository {
	return &AdsRepository{client: client}
}

// Response envelopes, matching the backend's wire format.
type adListResponse struct {
	Success bool        `json:"success"`
	Data    []models.Ad `json:"data"`
}

type adResponse struct {
	Success bool      `json:"success"`
	Data    models.Ad `json:"data"`
}

type analyticsResponse struct {
	Success bool                    `json:"success"`
	Data    models.AnalyticsSummary `json:"data"`
}

type pendingListResponse struct {
	Ads []models.PendingAd `json:"ads"`
}

// ListAds returns the advertisement collection in backend order. List
// responses omit the heavy inline image fields; use GetAd for a full
// record.
func (r *AdsRepository) ListAds(ctx context.Context) ([]models.Ad, error) {
	var resp adListResponse
	if err := r.client.Do(ctx, http.MethodGet, "/ads", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetAd returns one advertisement with full image payloads.
func (r *AdsRepository) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	var resp adResponse
	if err := r.client.Do(ctx, http.MethodGet, "/ads/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// AdDraft is the payload for creating an advertisement. Title, bottom
// image, phone number and the schedule are required; the fullscreen image
// is optional and priority defaults server-side when zero.
type AdDraft struct {
	Title           string    `json:"title"`
	BottomImage     string    `json:"bottomImage"`
	FullscreenImage string    `json:"fullscreenImage,omitempty"`
	PhoneNumber     string    `json:"phoneNumber"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Priority        int       `json:"priority,omitempty"`
}

func (d *AdDraft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &apierrors.ValidationError{Field: "title", Message: "title is required"}
	}
	if d.BottomImage == "" {
		return &apierrors.ValidationError{Field: "bottomImage", Message: "bottom image is required"}
	}
	if strings.TrimSpace(d.PhoneNumber) == "" {
		return &apierrors.ValidationError{Field: "phoneNumber", Message: "phone number is required"}
	}
	if err := models.ValidateSchedule(d.StartDate, d.EndDate); err != nil {
		return err
	}
	if d.Priority != 0 {
		if err := models.ValidatePriority(d.Priority); err != nil {
			return err
		}
	}
	return nil
}

// CreateAd creates a new advertisement from a draft.
func (r *AdsRepository) CreateAd(ctx context.Context, draft AdDraft) (*models.Ad, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}
	var resp adResponse
	if err := r.client.Do(ctx, http.MethodPost, "/ads", draft, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// AdPatch is a partial update; nil fields are left unchanged.
type AdPatch struct {
	Title           *string    `json:"title,omitempty"`
	BottomImage     *string    `json:"bottomImage,omitempty"`
	FullscreenImage *string    `json:"fullscreenImage,omitempty"`
	PhoneNumber     *string    `json:"phoneNumber,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Priority        *int       `json:"priority,omitempty"`
}

func (p *AdPatch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &apierrors.ValidationError{Field: "title", Message: "title must not be empty"}
	}
	if p.Priority != nil {
		if err := models.ValidatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.StartDate != nil && p.EndDate != nil {
		if err := models.ValidateSchedule(*p.StartDate, *p.EndDate); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAd applies a partial update to an advertisement.
func (r *AdsRepository) UpdateAd(ctx context.Context, id string, patch AdPatch) (*models.Ad, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}
	var resp adResponse
	if err := r.client.Do(ctx, http.MethodPut, "/ads/"+id, patch, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteAd removes an advertisement. Deleting an already-deleted id
// surfaces apierrors.ErrNotFound.
func (r *AdsRepository) DeleteAd(ctx context.Context, id string) error {
	return r.client.Do(ctx, http.MethodDelete, "/ads/"+id, nil, nil)
}

// AnalyticsSummary returns the backend-computed aggregate counts. The
// client never recomputes these from the list.
func (r *AdsRepository) AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	var resp analyticsResponse
	if err := r.client.Do(ctx, http.MethodGet, "/ads/analytics/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListPendingAds returns the moderation queue in backend order.
func (r *AdsRepository) ListPendingAds(ctx context.Context) ([]models.PendingAd, error) {
	var resp pendingListResponse
	if err := r.client.Do(ctx, http.MethodGet, "/admin/ads/pending", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Ads, nil
}

type approveRequest struct {
	Priority int `json:"priority"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// ApprovePending approves a submission with the given display priority.
// The priority is validated locally; an out-of-range value never reaches
// the backend.
func (r *AdsRepository) ApprovePending(ctx context.Context, id string, priority int) error {
	if err := models.ValidatePriority(priority); err != nil {
		return err
	}
	path := fmt.Sprintf("/admin/ads/%s/approve", id)
	return r.client.Do(ctx, http.MethodPost, path, approveRequest{Priority: priority}, nil)
}

// RejectPending rejects a submission with a mandatory reason. The reason
// is validated locally and is not retained after the request.
func (r *AdsRepository) RejectPending(ctx context.Context, id string, reason string) error {
	if err := models.ValidateRejectionReason(reason); err != nil {
		return err
	}
	path := fmt.Sprintf("/admin/ads/%s/reject", id)
	return r.client.Do(ctx, http.MethodPost, path, rejectRequest{Reason: reason}, nil)
}
