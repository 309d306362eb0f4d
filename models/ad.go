package models

import "time"

// Display statuses, derived from the schedule. Never stored or cached:
// "now" is continuously moving, so the status is recomputed on every read.
type DisplayStatus string

const (
	DisplayStatusActive    DisplayStatus = "active"
	DisplayStatusScheduled DisplayStatus = "scheduled"
	DisplayStatusExpired   DisplayStatus = "expired"
)

// DisplayStatusAt derives the display status of a schedule at the given
// instant. Both bounds are inclusive.
func DisplayStatusAt(now, startDate, endDate time.Time) DisplayStatus {
	if now.Before(startDate) {
		return DisplayStatusScheduled
	}
	if now.After(endDate) {
		return DisplayStatusExpired
	}
	return DisplayStatusActive
}

// Ad is an approved advertisement as the backend serves it. List responses
// omit the inline image fields for bandwidth; GetAd returns them populated.
type Ad struct {
	ID                 string    `json:"_id"`
	Title              string    `json:"title"`
	BottomImage        string    `json:"bottomImage,omitempty"`
	FullscreenImage    string    `json:"fullscreenImage,omitempty"`
	BottomImageRef     string    `json:"bottomImageGridFS,omitempty"`
	FullscreenImageRef string    `json:"fullscreenImageGridFS,omitempty"`
	PhoneNumber        string    `json:"phoneNumber"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	Priority           int       `json:"priority"`
	Impressions        int64     `json:"impressions"`
	Clicks             int64     `json:"clicks"`
	CreatedAt          time.Time `json:"createdAt"`
}

// DisplayStatusAt derives the ad's display status at the given instant.
func (a *Ad) DisplayStatusAt(now time.Time) DisplayStatus {
	return DisplayStatusAt(now, a.StartDate, a.EndDate)
}

// HasFullscreen reports whether the ad carries a fullscreen creative,
// inline or by reference.
func (a *Ad) HasFullscreen() bool {
	return a.FullscreenImage != "" || a.FullscreenImageRef != ""
}

// AnalyticsSummary holds the aggregate counts the backend computes. The
// client never recomputes these from the list: the list may be partial,
// the summary is authoritative.
type AnalyticsSummary struct {
	TotalAds   int `json:"totalAds"`
	ActiveAds  int `json:"activeAds"`
	ExpiredAds int `json:"expiredAds"`
}
