package models

import (
	"errors"
	"time"
)

// CreativeContent is the text/media/link bundle rendered by an ad. Only the
// fields listed here are ever forwarded to the remote platform; anything else
// a caller attaches is dropped before the create call.
type CreativeContent struct {
	Title        string `json:"title,omitempty"`
	Body         string `json:"body,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
	LinkURL      string `json:"link_url,omitempty"`
	CallToAction string `json:"call_to_action,omitempty"`
	PageID       string `json:"page_id,omitempty"`
}

// Empty reports whether the bundle carries no publishable content.
func (c CreativeContent) Empty() bool {
	return c.Title == "" && c.Body == "" && c.ImageURL == "" &&
		c.VideoURL == "" && c.LinkURL == ""
}

// Creative is remote-immutable: once published its content can never change
// via update. A content change requires a brand-new creative and ad pair.
type Creative struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id,omitempty"`
	AdID       string          `json:"ad_id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Content    CreativeContent `json:"content"`
	Status     Status          `json:"status"`

	ErrorNote string `json:"error_note,omitempty"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks the fields required before a creative may be published.
func (c *Creative) Validate() error {
	if c == nil {
		return errors.New("creative is nil")
	}
	if c.Content.Empty() {
		return errors.New("creative content is required")
	}
	return nil
}
