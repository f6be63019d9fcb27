package viewmodels

import (
	"github.com/brightsteps/brightstepsngo/pkg/models"
)

type AboutPage struct {
	BaseViewModel

	AboutBlurb string
	Roster     []*models.TeamCategory
}

type ImpactPage struct {
	BaseViewModel

	StudentsReached string
	SchoolsVisited  string
	AlbumCount      int
	Stories         []*models.Empowerment
}

type GetInvolvedPage struct {
	BaseViewModel

	ContactEmail string
	InstagramURL string
	FacebookURL  string
	DonateURL    string
	Stories      []*models.Empowerment
}
