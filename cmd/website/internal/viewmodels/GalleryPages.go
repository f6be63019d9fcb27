package viewmodels

import (
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
)

type GalleryPage struct {
	BaseViewModel

	Albums     []*models.Album
	Page       int
	TotalPages int
	Search     string
}

func (p GalleryPage) PrevPage() int {
	return p.Page - 1
}

func (p GalleryPage) NextPage() int {
	return p.Page + 1
}

type GalleryAlbumPage struct {
	BaseViewModel

	Album  *models.Album
	Photos []photoprovider.RemotePhoto
}
