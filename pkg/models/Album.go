package models

import (
	"fmt"
	"time"
)

var (
	ErrAlbumNotFound     = fmt.Errorf("album not found")
	ErrDuplicateAlbum    = fmt.Errorf("album already imported")
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
)

/*
Album is a locally mirrored record of one remote photo album, plus the
moderation and override metadata that only exists on our side. Remote-sourced
fields are refreshed by sync; override and moderation fields are only ever
touched by an administrator.
*/
type Album struct {
	BaseModel

	RemoteID        string `db:"remote_id"`
	OwnerID         string `db:"owner_id"`
	Title           string
	Description     string
	CoverURL        string    `db:"cover_url"`
	PhotoCount      int       `db:"photo_count"`
	RemoteURL       string    `db:"remote_url"`
	RemoteCreatedAt time.Time `db:"remote_created_at"`

	CustomTitle       string `db:"custom_title"`
	CustomDescription string `db:"custom_description"`
	CustomCoverURL    string `db:"custom_cover_url"`

	Status          AlbumStatus
	RejectionReason string     `db:"rejection_reason"`
	ApprovedBy      string     `db:"approved_by"`
	ApprovedAt      *time.Time `db:"approved_at"`

	DisplayOrder int        `db:"display_order"`
	LastSyncedAt *time.Time `db:"last_synced_at"`
}

// DisplayTitle returns the custom title when one is set, otherwise the
// title reported by the remote source.
func (a *Album) DisplayTitle() string {
	if a.CustomTitle != "" {
		return a.CustomTitle
	}

	return a.Title
}

func (a *Album) DisplayDescription() string {
	if a.CustomDescription != "" {
		return a.CustomDescription
	}

	return a.Description
}

func (a *Album) DisplayCoverURL() string {
	if a.CustomCoverURL != "" {
		return a.CustomCoverURL
	}

	return a.CoverURL
}

/*
RemoteFieldsDiffer reports whether any of the remote-sourced display fields
changed compared to what the remote source is reporting now. Override and
moderation fields never participate in this comparison.
*/
func (a *Album) RemoteFieldsDiffer(title, description, coverURL, remoteURL string, photoCount int) bool {
	return a.Title != title ||
		a.Description != description ||
		a.CoverURL != coverURL ||
		a.RemoteURL != remoteURL ||
		a.PhotoCount != photoCount
}

// AlbumStatusCounts is the per-status breakdown over the unfiltered album
// set, used for the badge counts on the admin gallery page.
type AlbumStatusCounts struct {
	Pending  int
	Approved int
	Rejected int
	Hidden   int
}

func (c AlbumStatusCounts) Total() int {
	return c.Pending + c.Approved + c.Rejected + c.Hidden
}
