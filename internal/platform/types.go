package platform

import "errors"

// Credentials carry the bearer token used for every remote call.
type Credentials struct {
	AccessToken string `json:"access_token"`
}

// Validate ensures a token is present before any call is attempted.
func (c Credentials) Validate() error {
	if c.AccessToken == "" {
		return errors.New("access token is required")
	}
	return nil
}

// CampaignPayload is the create/update body for a remote campaign. Budget
// fields are mutually exclusive; the platform rejects payloads with both.
type CampaignPayload struct {
	Name           string  `json:"name"`
	Objective      string  `json:"objective"`
	Status         string  `json:"status,omitempty"`
	DailyBudget    float64 `json:"daily_budget,omitempty"`
	LifetimeBudget float64 `json:"lifetime_budget,omitempty"`
	StartTime      string  `json:"start_time,omitempty"`
	StopTime       string  `json:"stop_time,omitempty"`
}

// AdSetPayload is the create/update body for a remote ad set. BidAmount must
// be nil under the uncapped strategy and set under the capped one; callers
// normalize before building the payload.
type AdSetPayload struct {
	Name             string         `json:"name"`
	CampaignID       string         `json:"campaign_id"`
	Status           string         `json:"status,omitempty"`
	OptimizationGoal string         `json:"optimization_goal,omitempty"`
	BillingEvent     string         `json:"billing_event,omitempty"`
	BidStrategy      string         `json:"bid_strategy,omitempty"`
	BidAmount        *float64       `json:"bid_amount,omitempty"`
	Targeting        map[string]any `json:"targeting,omitempty"`
	DailyBudget      float64        `json:"daily_budget,omitempty"`
	LifetimeBudget   float64        `json:"lifetime_budget,omitempty"`
	StartTime        string         `json:"start_time,omitempty"`
	EndTime          string         `json:"end_time,omitempty"`
}

// CreativePayload is the create body for a remote creative. These are the
// only fields the platform accepts; everything else a caller attaches to the
// content bundle is dropped, never forwarded.
type CreativePayload struct {
	Name         string `json:"name,omitempty"`
	Title        string `json:"title,omitempty"`
	Body         string `json:"body,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
	LinkURL      string `json:"link_url,omitempty"`
	CallToAction string `json:"call_to_action,omitempty"`
	PageID       string `json:"page_id,omitempty"`
}

// AdPayload is the create/update body for a remote ad.
type AdPayload struct {
	Name       string `json:"name"`
	AdSetID    string `json:"adset_id"`
	CreativeID string `json:"creative_id"`
	Status     string `json:"status,omitempty"`
}

// RemoteCampaign is a campaign as returned by the platform's list endpoint.
type RemoteCampaign struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Status         string  `json:"status"`
	Objective      string  `json:"objective,omitempty"`
	DailyBudget    float64 `json:"daily_budget,omitempty"`
	LifetimeBudget float64 `json:"lifetime_budget,omitempty"`
	StartTime      string  `json:"start_time,omitempty"`
	StopTime       string  `json:"stop_time,omitempty"`
}

// RemoteAdSet is an ad set as returned by the platform's list endpoint.
type RemoteAdSet struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	CampaignID       string   `json:"campaign_id"`
	OptimizationGoal string   `json:"optimization_goal,omitempty"`
	BillingEvent     string   `json:"billing_event,omitempty"`
	BidStrategy      string   `json:"bid_strategy,omitempty"`
	BidAmount        *float64 `json:"bid_amount,omitempty"`
	DailyBudget      float64  `json:"daily_budget,omitempty"`
	LifetimeBudget   float64  `json:"lifetime_budget,omitempty"`
}

// RemoteAd is an ad as returned by the platform's list endpoint.
type RemoteAd struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	AdSetID    string `json:"adset_id"`
	CreativeID string `json:"creative_id,omitempty"`
}
