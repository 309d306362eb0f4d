package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/instantlly/ads-admin/cache"
	"github.com/instantlly/ads-admin/models"
	"github.com/instantlly/ads-admin/repository"
)

// fakeRepo is an in-memory backend: approving a pending submission
// promotes it into the ad collection, the way the real backend does.
type fakeRepo struct {
	mu      sync.Mutex
	ads     []models.Ad
	pending []models.PendingAd
	summary models.AnalyticsSummary
	calls   map[string]int
	failAll error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{calls: make(map[string]int)}
}

func (f *fakeRepo) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.failAll
}

func (f *fakeRepo) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRepo) ListAds(ctx context.Context) ([]models.Ad, error) {
	if err := f.record("ListAds"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Ad(nil), f.ads...), nil
}

func (f *fakeRepo) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	if err := f.record("GetAd"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.ads {
		if f.ads[i].ID == id {
			return &f.ads[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) CreateAd(ctx context.Context, draft repository.AdDraft) (*models.Ad, error) {
	if err := f.record("CreateAd"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ad := models.Ad{ID: "new", Title: draft.Title}
	f.ads = append(f.ads, ad)
	return &ad, nil
}

func (f *fakeRepo) UpdateAd(ctx context.Context, id string, patch repository.AdPatch) (*models.Ad, error) {
	if err := f.record("UpdateAd"); err != nil {
		return nil, err
	}
	return &models.Ad{ID: id}, nil
}

func (f *fakeRepo) DeleteAd(ctx context.Context, id string) error {
	return f.record("DeleteAd")
}

func (f *fakeRepo) AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	if err := f.record("AnalyticsSummary"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.summary
	return &s, nil
}

func (f *fakeRepo) ListPendingAds(ctx context.Context) ([]models.PendingAd, error) {
	if err := f.record("ListPendingAds"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PendingAd(nil), f.pending...), nil
}

func (f *fakeRepo) ApprovePending(ctx context.Context, id string, priority int) error {
	if err := models.ValidatePriority(priority); err != nil {
		return err
	}
	if err := f.record("ApprovePending"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pending {
		if p.ID == id {
			f.ads = append(f.ads, models.Ad{
				ID:          "promoted-" + p.ID,
				Title:       p.Title,
				PhoneNumber: p.PhoneNumber,
				StartDate:   p.StartDate,
				EndDate:     p.EndDate,
				Priority:    priority,
			})
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) RejectPending(ctx context.Context, id string, reason string) error {
	if err := models.ValidateRejectionReason(reason); err != nil {
		return err
	}
	if err := f.record("RejectPending"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pending {
		if p.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func newTestService(repo *fakeRepo) *AdsService {
	store := cache.NewStore(time.Minute, time.Second, zap.NewNop())
	return NewAdsService(repo, store, 10*time.Millisecond, zap.NewNop())
}

func TestListAdsIsCached(t *testing.T) {
	repo := newFakeRepo()
	repo.ads = []models.Ad{{ID: "a1", Title: "First"}}
	svc := newTestService(repo)
	ctx := context.Background()

	ads, err := svc.ListAds(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 1)

	_, err = svc.ListAds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count("ListAds"), "second read served from cache")
}

func TestGetAdBypassesCache(t *testing.T) {
	repo := newFakeRepo()
	repo.ads = []models.Ad{{ID: "a1", BottomImage: "data:image/png;base64,xx"}}
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ad, err := svc.GetAd(ctx, "a1")
		require.NoError(t, err)
		assert.NotEmpty(t, ad.BottomImage)
	}
	assert.Equal(t, 3, repo.count("GetAd"), "full records are never cached")
}

func TestMutationsInvalidateAdsAndAnalytics(t *testing.T) {
	mutations := []struct {
		name string
		run  func(svc *AdsService, ctx context.Context) error
	}{
		{"create", func(svc *AdsService, ctx context.Context) error {
			_, err := svc.CreateAd(ctx, repository.AdDraft{Title: "x"})
			return err
		}},
		{"update", func(svc *AdsService, ctx context.Context) error {
			_, err := svc.UpdateAd(ctx, "a1", repository.AdPatch{})
			return err
		}},
		{"delete", func(svc *AdsService, ctx context.Context) error {
			return svc.DeleteAd(ctx, "a1")
		}},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.ads = []models.Ad{{ID: "a1"}}
			svc := newTestService(repo)
			ctx := context.Background()

			_, err := svc.ListAds(ctx)
			require.NoError(t, err)
			_, err = svc.Analytics(ctx)
			require.NoError(t, err)

			require.NoError(t, tt.run(svc, ctx))

			_, err = svc.ListAds(ctx)
			require.NoError(t, err)
			_, err = svc.Analytics(ctx)
			require.NoError(t, err)

			assert.Equal(t, 2, repo.count("ListAds"), "ads key invalidated by %s", tt.name)
			assert.Equal(t, 2, repo.count("AnalyticsSummary"), "analytics key invalidated by %s", tt.name)
		})
	}
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	repo := newFakeRepo()
	repo.ads = []models.Ad{{ID: "a1", Title: "Last known good"}}
	svc := newTestService(repo)
	ctx := context.Background()

	ads, err := svc.ListAds(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 1)

	repo.mu.Lock()
	repo.failAll = errors.New("backend down")
	repo.mu.Unlock()

	err = svc.DeleteAd(ctx, "a1")
	require.Error(t, err)

	repo.mu.Lock()
	repo.failAll = nil
	repo.mu.Unlock()

	ads, err = svc.ListAds(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Last known good", ads[0].Title)
	assert.Equal(t, 1, repo.count("ListAds"), "cache still valid after a failed mutation")
}

func TestApprovalPromotesSubmissionAndInvalidatesAllViews(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []models.PendingAd{{
		ID:          "id1",
		Title:       "Partner Promo",
		PhoneNumber: "+911234567890",
		Status:      models.ModerationStatusPending,
	}}
	svc := newTestService(repo)
	ctx := context.Background()

	pending, err := svc.ListPendingAds(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	_, err = svc.ListAds(ctx)
	require.NoError(t, err)
	_, err = svc.Analytics(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.ApprovePending(ctx, "id1", 5))

	pending, err = svc.ListPendingAds(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "approved item leaves the pending set")

	ads, err := svc.ListAds(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "Partner Promo", ads[0].Title, "submission content is promoted into the collection")
	assert.Equal(t, 5, ads[0].Priority)

	_, err = svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count("AnalyticsSummary"), "approval invalidates analytics")
}

func TestRejectionInvalidatesOnlyPendingQueue(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []models.PendingAd{{ID: "id1", Status: models.ModerationStatusPending}}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.ListPendingAds(ctx)
	require.NoError(t, err)
	_, err = svc.ListAds(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.RejectPending(ctx, "id1", "low image quality"))

	pending, err := svc.ListPendingAds(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.ListAds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count("ListPendingAds"), "pending key invalidated by rejection")
	assert.Equal(t, 1, repo.count("ListAds"), "rejection creates no advertisement, ads cache stays valid")
}

func TestInvalidApproveAndRejectIssueNoRequests(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []models.PendingAd{{ID: "id1"}}
	svc := newTestService(repo)
	ctx := context.Background()

	assert.Error(t, svc.ApprovePending(ctx, "id1", 42))
	assert.Error(t, svc.RejectPending(ctx, "id1", "  "))

	assert.Equal(t, 0, repo.count("ApprovePending"))
	assert.Equal(t, 0, repo.count("RejectPending"))
}

func TestPendingPollerSurfacesNewSubmissions(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pending, err := svc.ListPendingAds(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A partner submits while the admin keeps the view open.
	repo.mu.Lock()
	repo.pending = []models.PendingAd{{ID: "fresh", Status: models.ModerationStatusPending}}
	repo.mu.Unlock()

	svc.StartPendingPoller(ctx)

	require.Eventually(t, func() bool {
		p, err := svc.ListPendingAds(ctx)
		return err == nil && len(p) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
