package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
)

type ModerationServicer interface {
	Approve(albumID uint, approvedBy string) (*models.Album, error)
	Reject(albumID uint, reason string) (*models.Album, error)
	Hide(albumID uint) (*models.Album, error)
}

type ModerationServiceConfig struct {
	AlbumService AlbumServicer
}

/*
ModerationService enforces the album status state machine. Reject is only
legal from pending, hide only from approved, and approve from pending,
rejected, or hidden. Re-approving an approved album is allowed and simply
refreshes the approval timestamp.
*/
type ModerationService struct {
	albumService AlbumServicer
}

func NewModerationService(config ModerationServiceConfig) ModerationService {
	return ModerationService{
		albumService: config.AlbumService,
	}
}

func (s ModerationService) Approve(albumID uint, approvedBy string) (*models.Album, error) {
	var (
		err   error
		album *models.Album
	)

	if album, err = s.transition(albumID, models.StatusApproved); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	album.ApprovedBy = approvedBy
	album.ApprovedAt = &now

	// A prior rejection reason is kept for the audit trail.

	if err = s.albumService.UpdateModeration(album); err != nil {
		return nil, err
	}

	slog.Info("album approved", "albumID", album.ID, "approvedBy", approvedBy)
	return album, nil
}

func (s ModerationService) Reject(albumID uint, reason string) (*models.Album, error) {
	var (
		err   error
		album *models.Album
	)

	if album, err = s.transition(albumID, models.StatusRejected); err != nil {
		return nil, err
	}

	album.RejectionReason = reason

	if err = s.albumService.UpdateModeration(album); err != nil {
		return nil, err
	}

	slog.Info("album rejected", "albumID", album.ID, "reason", reason)
	return album, nil
}

func (s ModerationService) Hide(albumID uint) (*models.Album, error) {
	var (
		err   error
		album *models.Album
	)

	if album, err = s.transition(albumID, models.StatusHidden); err != nil {
		return nil, err
	}

	if err = s.albumService.UpdateModeration(album); err != nil {
		return nil, err
	}

	slog.Info("album hidden", "albumID", album.ID)
	return album, nil
}

// transition loads the album and validates the requested move, mutating the
// in-memory status on success. Nothing is persisted when the move is illegal.
func (s ModerationService) transition(albumID uint, target models.AlbumStatus) (*models.Album, error) {
	var (
		err   error
		album *models.Album
	)

	if album, err = s.albumService.GetByID(albumID); err != nil {
		return nil, err
	}

	if !album.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s to %s for album %d",
			models.ErrInvalidTransition, album.Status, target, albumID)
	}

	album.Status = target
	return album, nil
}
