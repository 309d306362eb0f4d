// Package service ties the resource repository to the cache layer. Every
// successful mutation invalidates the affected keys before the next read
// is served; a failed mutation leaves the cache untouched so the UI keeps
// showing last-known-good state.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/instantlly/ads-admin/cache"
	"github.com/instantlly/ads-admin/models"
	"github.com/instantlly/ads-admin/repository"
)

// AdsAPI is the slice of the repository the service needs.
type AdsAPI interface {
	ListAds(ctx context.Context) ([]models.Ad, error)
	GetAd(ctx context.Context, id string) (*models.Ad, error)
	CreateAd(ctx context.Context, draft repository.AdDraft) (*models.Ad, error)
	UpdateAd(ctx context.Context, id string, patch repository.AdPatch) (*models.Ad, error)
	DeleteAd(ctx context.Context, id string) error
	AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error)
	ListPendingAds(ctx context.Context) ([]models.PendingAd, error)
	ApprovePending(ctx context.Context, id string, priority int) error
	RejectPending(ctx context.Context, id string, reason string) error
}

type AdsService struct {
	repo         AdsAPI
	cache        *cache.Store
	log          *zap.Logger
	pollInterval time.Duration
}

func NewAdsService(repo AdsAPI, store *cache.Store, pollInterval time.Duration, log *zap.Logger) *AdsService {
	return &AdsService{
		repo:         repo,
		cache:        store,
		log:          log,
		pollInterval: pollInterval,
	}
}

// ListAds serves the advertisement list through the cache.
func (s *AdsService) ListAds(ctx context.Context) ([]models.Ad, error) {
	v, err := s.cache.Get(ctx, cache.KeyAds, func(ctx context.Context) (any, error) {
		return s.repo.ListAds(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Ad), nil
}

// GetAd fetches one full record, images included. Never cached: full image
// payloads are heavy and edits must see the authoritative state.
func (s *AdsService) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	return s.repo.GetAd(ctx, id)
}

// Analytics serves the aggregate summary through the cache.
func (s *AdsService) Analytics(ctx context.Context) (*models.AnalyticsSummary, error) {
	v, err := s.cache.Get(ctx, cache.KeyAnalytics, func(ctx context.Context) (any, error) {
		return s.repo.AnalyticsSummary(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.AnalyticsSummary), nil
}

// ListPendingAds serves the moderation queue through the cache.
func (s *AdsService) ListPendingAds(ctx context.Context) ([]models.PendingAd, error) {
	v, err := s.cache.Get(ctx, cache.KeyPendingAds, func(ctx context.Context) (any, error) {
		return s.repo.ListPendingAds(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.PendingAd), nil
}

// CreateAd creates an advertisement and invalidates the dependent views.
func (s *AdsService) CreateAd(ctx context.Context, draft repository.AdDraft) (*models.Ad, error) {
	ad, err := s.repo.CreateAd(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(cache.KeyAds, cache.KeyAnalytics)
	s.log.Info("ad created", zap.String("id", ad.ID), zap.String("title", ad.Title))
	return ad, nil
}

// UpdateAd applies a partial update and invalidates the dependent views.
func (s *AdsService) UpdateAd(ctx context.Context, id string, patch repository.AdPatch) (*models.Ad, error) {
	ad, err := s.repo.UpdateAd(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(cache.KeyAds, cache.KeyAnalytics)
	s.log.Info("ad updated", zap.String("id", id))
	return ad, nil
}

// DeleteAd deletes an advertisement and invalidates the dependent views.
func (s *AdsService) DeleteAd(ctx context.Context, id string) error {
	if err := s.repo.DeleteAd(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(cache.KeyAds, cache.KeyAnalytics)
	s.log.Info("ad deleted", zap.String("id", id))
	return nil
}

// ApprovePending promotes a submission into the live collection with the
// given display priority. On success the item leaves the pending set and a
// corresponding advertisement appears in the main collection, so all three
// keys are invalidated.
func (s *AdsService) ApprovePending(ctx context.Context, id string, priority int) error {
	if err := s.repo.ApprovePending(ctx, id, priority); err != nil {
		return err
	}
	s.cache.Invalidate(cache.KeyPendingAds, cache.KeyAds, cache.KeyAnalytics)
	s.log.Info("pending ad approved", zap.String("id", id), zap.Int("priority", priority))
	return nil
}

// RejectPending rejects a submission with a reason. No advertisement is
// created; only the pending queue changes.
func (s *AdsService) RejectPending(ctx context.Context, id string, reason string) error {
	if err := s.repo.RejectPending(ctx, id, reason); err != nil {
		return err
	}
	s.cache.Invalidate(cache.KeyPendingAds)
	s.log.Info("pending ad rejected", zap.String("id", id))
	return nil
}

// StartPendingPoller revalidates the moderation queue on a fixed interval
// until ctx is cancelled, surfacing new submissions without a manual
// refresh.
func (s *AdsService) StartPendingPoller(ctx context.Context) {
	s.cache.Poll(ctx, cache.KeyPendingAds, s.pollInterval, func(ctx context.Context) (any, error) {
		return s.repo.ListPendingAds(ctx)
	})
}
