package gallery

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/viewmodels"
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
	"github.com/brightsteps/brightstepsngo/pkg/services"
)

type GalleryHandlers interface {
	GalleryPage(w http.ResponseWriter, r *http.Request)
	ViewAlbumPage(w http.ResponseWriter, r *http.Request)
}

type GalleryControllerConfig struct {
	AlbumService services.AlbumServicer
	PageSize     int
	Provider     photoprovider.Provider
	Renderer     rendering.TemplateRenderer
}

/*
GalleryController serves the public gallery. Only approved albums are ever
visible here; the album service pins public viewers to approved regardless
of what the request asks for.
*/
type GalleryController struct {
	albumService services.AlbumServicer
	pageSize     int
	provider     photoprovider.Provider
	renderer     rendering.TemplateRenderer
}

func NewGalleryController(config GalleryControllerConfig) GalleryController {
	return GalleryController{
		albumService: config.AlbumService,
		pageSize:     config.PageSize,
		provider:     config.Provider,
		renderer:     config.Renderer,
	}
}

/*
GET /gallery
*/
func (c GalleryController) GalleryPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/gallery"

	page := httphelpers.GetFromRequest[int](r, "page")
	search := httphelpers.GetFromRequest[string](r, "search")

	if page < 1 {
		page = 1
	}

	viewData := viewmodels.GalleryPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Page:   page,
		Search: search,
	}

	albums, total, err := c.albumService.GetAlbumList(services.AlbumListOptions{
		Viewer:   services.ViewerPublic,
		Search:   search,
		Page:     page,
		PageSize: c.pageSize,
	})

	if err != nil {
		slog.Error("error retrieving gallery albums", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading the gallery."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Albums = albums
	viewData.TotalPages = (total + c.pageSize - 1) / c.pageSize

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /gallery/{id}
*/
func (c GalleryController) ViewAlbumPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/gallery-album"

	albumID := httphelpers.GetFromRequest[uint](r, "id")

	viewData := viewmodels.GalleryAlbumPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	album, err := c.albumService.GetByID(albumID)

	// A non-approved album simply does not exist for the public.
	if err != nil || album.Status != models.StatusApproved {
		httphelpers.WriteText(w, http.StatusNotFound, "album not found")
		return
	}

	viewData.Album = album

	photos, err := c.provider.ListAlbumPhotos(r.Context(), album.RemoteID, 100)

	if err != nil {
		slog.Error("error retrieving album photos", "error", err, "albumID", albumID, "remoteID", album.RemoteID)
		viewData.IsError = true
		viewData.Message = "There was a problem loading photos for this album."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Photos = photos

	c.renderer.Render(pageName, viewData, w)
}
