package models

import (
	"errors"
	"time"
)

// Ad binds a creative to an ad set. AdSetID and CreativeID are required and
// must reference locally persisted records.
type Ad struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	AdSetID    string `json:"adset_id"`
	CreativeID string `json:"creative_id"`
	Name       string `json:"name"`
	Status     Status `json:"status"`

	RemoteSyncPending bool   `json:"remote_sync_pending,omitempty"`
	ErrorNote         string `json:"error_note,omitempty"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks the fields required before an ad may be published.
func (a *Ad) Validate() error {
	if a == nil {
		return errors.New("ad is nil")
	}
	if a.Name == "" {
		return errors.New("ad name is required")
	}
	return nil
}
