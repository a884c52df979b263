package models

import "time"

// EntityKind identifies one level of the ad entity hierarchy.
type EntityKind string

const (
	KindAccount  EntityKind = "account"
	KindCampaign EntityKind = "campaign"
	KindAdSet    EntityKind = "adset"
	KindCreative EntityKind = "creative"
	KindAd       EntityKind = "ad"
)

// Status is the lifecycle state shared by campaigns, ad sets and ads.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPaused   Status = "paused"
	StatusActive   Status = "active"
	StatusFailed   Status = "failed"
	StatusDeleted  Status = "deleted"
	StatusArchived Status = "archived"
)

// Terminal reports whether the status is a terminal soft-delete marker.
func (s Status) Terminal() bool {
	return s == StatusDeleted
}

// Account represents an advertiser account on the remote platform. It is the
// root of the entity hierarchy; every campaign belongs to exactly one account.
type Account struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id,omitempty"`
	Name       string    `json:"name"`
	Currency   string    `json:"currency,omitempty"`
	Timezone   string    `json:"timezone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tombstone records when and why a local record was soft-deleted.
type Tombstone struct {
	DeletedAt time.Time `json:"deleted_at"`
	Reason    string    `json:"reason,omitempty"`
}
