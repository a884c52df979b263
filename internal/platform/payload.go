package platform

import (
	"encoding/json"
	"time"

	"github.com/radiusdt/adbridge/internal/models"
)

// StatusToRemote maps a local status to the platform's wire representation.
// Draft records are published as paused so nothing spends before an explicit
// activation.
func StatusToRemote(s models.Status) string {
	switch s {
	case models.StatusActive:
		return "ACTIVE"
	case models.StatusArchived:
		return "ARCHIVED"
	case models.StatusDeleted:
		return "DELETED"
	default:
		return "PAUSED"
	}
}

// StatusFromRemote maps a platform status back to the local enum.
func StatusFromRemote(s string) models.Status {
	switch s {
	case "ACTIVE":
		return models.StatusActive
	case "ARCHIVED":
		return models.StatusArchived
	case "DELETED":
		return models.StatusDeleted
	default:
		return models.StatusPaused
	}
}

// WireTime formats a schedule boundary for the platform, empty for the zero
// time.
func WireTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// BuildCampaignPayload maps a local campaign to its remote create body.
func BuildCampaignPayload(c *models.Campaign) CampaignPayload {
	return CampaignPayload{
		Name:           c.Name,
		Objective:      string(c.Objective),
		Status:         StatusToRemote(c.Status),
		DailyBudget:    c.Budget.Daily,
		LifetimeBudget: c.Budget.Lifetime,
		StartTime:      WireTime(c.Schedule.StartAt),
		StopTime:       WireTime(c.Schedule.StopAt),
	}
}

// BuildAdSetPayload maps a local ad set to its remote create body. The ad set
// must already have its bid fields normalized; the payload forwards them
// as-is.
func BuildAdSetPayload(a *models.AdSet, campaignExternalID string) AdSetPayload {
	return AdSetPayload{
		Name:             a.Name,
		CampaignID:       campaignExternalID,
		Status:           StatusToRemote(a.Status),
		OptimizationGoal: string(a.OptimizationGoal),
		BillingEvent:     string(a.BillingEvent),
		BidStrategy:      string(a.BidStrategy),
		BidAmount:        a.BidAmount,
		Targeting:        TargetingSpec(a.Targeting),
		DailyBudget:      a.Budget.Daily,
		LifetimeBudget:   a.Budget.Lifetime,
		StartTime:        WireTime(a.Schedule.StartAt),
		EndTime:          WireTime(a.Schedule.StopAt),
	}
}

// TargetingSpec converts the typed targeting struct into the loose map the
// platform expects, dropping empty filters.
func TargetingSpec(t models.Targeting) map[string]any {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil
	}
	var spec map[string]any
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil
	}
	if len(spec) == 0 {
		return nil
	}
	return spec
}

// BuildCreativePayload maps a content bundle to the remote create body. Only
// platform-accepted fields are forwarded; unknown extras never leave the
// process.
func BuildCreativePayload(name string, content models.CreativeContent) CreativePayload {
	return CreativePayload{
		Name:         name,
		Title:        content.Title,
		Body:         content.Body,
		ImageURL:     content.ImageURL,
		VideoURL:     content.VideoURL,
		LinkURL:      content.LinkURL,
		CallToAction: content.CallToAction,
		PageID:       content.PageID,
	}
}

// BuildAdPayload maps a local ad to its remote create body.
func BuildAdPayload(a *models.Ad, adsetExternalID, creativeExternalID string) AdPayload {
	return AdPayload{
		Name:       a.Name,
		AdSetID:    adsetExternalID,
		CreativeID: creativeExternalID,
		Status:     StatusToRemote(a.Status),
	}
}
