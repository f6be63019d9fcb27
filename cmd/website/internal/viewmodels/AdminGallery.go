package viewmodels

import (
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
	"github.com/brightsteps/brightstepsngo/pkg/services"
)

type AdminGalleryList struct {
	BaseViewModel

	Albums       []*models.Album
	TotalCount   int
	StatusCounts models.AlbumStatusCounts
	StatusFilter string
	Search       string
	Page         int
	TotalPages   int
	LatestSync   *models.SyncLog
	SyncRunning  bool
}

type AdminAlbumEdit struct {
	BaseViewModel

	Album *models.Album
}

type AdminCoverPicker struct {
	BaseViewModel

	Album  *models.Album
	Photos []photoprovider.RemotePhoto
}

type AdminAddAlbum struct {
	BaseViewModel

	Candidates []services.RemoteCandidate
	Search     string
}

type AdminSyncHistory struct {
	BaseViewModel

	Entries []*models.SyncLog
}
