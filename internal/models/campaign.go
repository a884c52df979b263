package models

import (
	"errors"
	"time"
)

type CampaignObjective string

const (
	ObjectiveBrandAwareness CampaignObjective = "brand_awareness"
	ObjectiveTraffic        CampaignObjective = "traffic"
	ObjectiveConversions    CampaignObjective = "conversions"
	ObjectiveAppInstalls    CampaignObjective = "app_installs"
	ObjectiveVideoViews     CampaignObjective = "video_views"
	ObjectiveLeadGeneration CampaignObjective = "lead_generation"
)

// Schedule holds the delivery window for a campaign or ad set. A zero StopAt
// means the entity runs until paused.
type Schedule struct {
	StartAt time.Time `json:"start_at,omitempty"`
	StopAt  time.Time `json:"stop_at,omitempty"`
}

// Budget holds spend limits. Daily and Lifetime are mutually exclusive; the
// remote platform rejects payloads carrying both.
type Budget struct {
	Daily    float64 `json:"daily,omitempty"`
	Lifetime float64 `json:"lifetime,omitempty"`
}

// Validate rejects budgets that set both daily and lifetime limits.
func (b Budget) Validate() error {
	if b.Daily > 0 && b.Lifetime > 0 {
		return errors.New("daily and lifetime budget are mutually exclusive")
	}
	return nil
}

// Campaign is the top entity of a publishable graph. ExternalID is empty
// until the campaign has been created on the remote platform.
type Campaign struct {
	ID         string            `json:"id"`
	ExternalID string            `json:"external_id,omitempty"`
	AccountID  string            `json:"account_id"`
	Name       string            `json:"name"`
	Status     Status            `json:"status"`
	Objective  CampaignObjective `json:"objective,omitempty"`
	Budget     Budget            `json:"budget"`
	Schedule   Schedule          `json:"schedule"`

	// RemoteSyncPending marks a record whose latest remote update failed and
	// whose local state may therefore be ahead of the platform.
	RemoteSyncPending bool `json:"remote_sync_pending,omitempty"`

	// ErrorNote carries the message of the failure that marked this record
	// FAILED. Empty for healthy records.
	ErrorNote string `json:"error_note,omitempty"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks the fields required before a campaign may be published.
func (c *Campaign) Validate() error {
	if c == nil {
		return errors.New("campaign is nil")
	}
	if c.Name == "" {
		return errors.New("campaign name is required")
	}
	if c.AccountID == "" {
		return errors.New("campaign account_id is required")
	}
	if c.Objective == "" {
		return errors.New("campaign objective is required")
	}
	return c.Budget.Validate()
}
