package models

import "fmt"

/*
AlbumStatus is the moderation state of an album. Albums enter the system
as StatusPending and move between the other states through moderation
actions. No transition ever targets StatusPending again.
*/
type AlbumStatus string

const (
	StatusPending  AlbumStatus = "pending"
	StatusApproved AlbumStatus = "approved"
	StatusRejected AlbumStatus = "rejected"
	StatusHidden   AlbumStatus = "hidden"
)

var legalTransitions = map[AlbumStatus][]AlbumStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusApproved, StatusHidden},
	StatusRejected: {StatusApproved},
	StatusHidden:   {StatusApproved},
}

func ParseAlbumStatus(value string) (AlbumStatus, error) {
	switch AlbumStatus(value) {
	case StatusPending, StatusApproved, StatusRejected, StatusHidden:
		return AlbumStatus(value), nil
	}

	return "", fmt.Errorf("invalid album status '%s'", value)
}

func (s AlbumStatus) IsValid() bool {
	_, err := ParseAlbumStatus(string(s))
	return err == nil
}

func (s AlbumStatus) CanTransitionTo(target AlbumStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == target {
			return true
		}
	}

	return false
}
