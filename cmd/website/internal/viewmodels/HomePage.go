package viewmodels

import (
	"github.com/brightsteps/brightstepsngo/pkg/models"
)

type HomePage struct {
	BaseViewModel

	HeroTitle      string
	HeroSubtitle   string
	HeroImageURL   string
	DonateURL      string
	CarouselAlbums []*models.Album
	Stories        []*models.Empowerment
}
