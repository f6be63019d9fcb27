package admingallery

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/viewmodels"
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
	"github.com/brightsteps/brightstepsngo/pkg/services"
)

type AdminGalleryHandlers interface {
	GalleryPage(w http.ResponseWriter, r *http.Request)
	SyncAction(w http.ResponseWriter, r *http.Request)
	SyncHistoryPage(w http.ResponseWriter, r *http.Request)
	ApproveAction(w http.ResponseWriter, r *http.Request)
	RejectAction(w http.ResponseWriter, r *http.Request)
	HideAction(w http.ResponseWriter, r *http.Request)
	EditAlbumPage(w http.ResponseWriter, r *http.Request)
	UpdateOverridesAction(w http.ResponseWriter, r *http.Request)
	CoverPickerPage(w http.ResponseWriter, r *http.Request)
	AddAlbumPage(w http.ResponseWriter, r *http.Request)
	AddAlbumAction(w http.ResponseWriter, r *http.Request)
}

type AdminGalleryControllerConfig struct {
	AlbumService      services.AlbumServicer
	ModerationService services.ModerationServicer
	PageSize          int
	Provider          photoprovider.Provider
	Renderer          rendering.TemplateRenderer
	SyncLogService    services.SyncLogServicer
	SyncService       services.SyncServicer
}

type AdminGalleryController struct {
	albumService      services.AlbumServicer
	moderationService services.ModerationServicer
	pageSize          int
	provider          photoprovider.Provider
	renderer          rendering.TemplateRenderer
	syncLogService    services.SyncLogServicer
	syncService       services.SyncServicer
}

func NewAdminGalleryController(config AdminGalleryControllerConfig) AdminGalleryController {
	return AdminGalleryController{
		albumService:      config.AlbumService,
		moderationService: config.ModerationService,
		pageSize:          config.PageSize,
		provider:          config.Provider,
		renderer:          config.Renderer,
		syncLogService:    config.SyncLogService,
		syncService:       config.SyncService,
	}
}

/*
GET /admin/gallery
*/
func (c AdminGalleryController) GalleryPage(w http.ResponseWriter, r *http.Request) {
	c.renderGalleryPage(w, r, "")
}

func (c AdminGalleryController) renderGalleryPage(w http.ResponseWriter, r *http.Request, message string) {
	pageName := "pages/admin/gallery"

	statusFilter := httphelpers.GetFromRequest[string](r, "status")
	search := httphelpers.GetFromRequest[string](r, "search")
	page := httphelpers.GetFromRequest[int](r, "page")

	if page < 1 {
		page = 1
	}

	if statusFilter == "" {
		statusFilter = "all"
	}

	viewData := viewmodels.AdminGalleryList{
		BaseViewModel: viewmodels.BaseViewModel{
			Message: message,
			IsHtmx:  httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/admin-gallery.js"},
			},
		},
		StatusFilter: statusFilter,
		Search:       search,
		Page:         page,
		SyncRunning:  c.syncService.IsRunning(),
	}

	albums, total, err := c.albumService.GetAlbumList(services.AlbumListOptions{
		Viewer:   services.ViewerAdmin,
		Status:   statusFilter,
		Search:   search,
		Page:     page,
		PageSize: c.pageSize,
	})

	if err != nil {
		slog.Error("error retrieving albums for admin gallery", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading albums."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Albums = albums
	viewData.TotalCount = total
	viewData.TotalPages = (total + c.pageSize - 1) / c.pageSize

	if viewData.StatusCounts, err = c.albumService.GetStatusCounts(); err != nil {
		slog.Error("error retrieving album status counts", "error", err)
	}

	if viewData.LatestSync, err = c.syncLogService.Latest(); err != nil {
		slog.Error("error retrieving latest sync log entry", "error", err)
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/gallery/sync
*/
func (c AdminGalleryController) SyncAction(w http.ResponseWriter, r *http.Request) {
	triggeredBy := httphelpers.GetFromRequest[string](r, "triggeredBy")

	if triggeredBy == "" {
		triggeredBy = "admin"
	}

	err := c.syncService.TriggerAsync(triggeredBy)

	if errors.Is(err, models.ErrSyncAlreadyRunning) {
		c.renderGalleryPage(w, r, "A sync is already running. Give it a moment to finish.")
		return
	}

	c.renderGalleryPage(w, r, "Sync started. Refresh this page to see progress.")
}

/*
GET /admin/gallery/sync-history
*/
func (c AdminGalleryController) SyncHistoryPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/admin/sync-history"

	viewData := viewmodels.AdminSyncHistory{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	entries, err := c.syncLogService.List(50)

	if err != nil {
		slog.Error("error retrieving sync history", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading sync history."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Entries = entries

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/gallery/{id}/approve
*/
func (c AdminGalleryController) ApproveAction(w http.ResponseWriter, r *http.Request) {
	albumID := httphelpers.GetFromRequest[uint](r, "id")
	approvedBy := httphelpers.GetFromRequest[string](r, "approvedBy")

	if approvedBy == "" {
		approvedBy = "admin"
	}

	if _, err := c.moderationService.Approve(albumID, approvedBy); err != nil {
		c.renderGalleryPage(w, r, moderationErrorMessage(err))
		return
	}

	c.renderGalleryPage(w, r, "Album approved.")
}

/*
POST /admin/gallery/{id}/reject
*/
func (c AdminGalleryController) RejectAction(w http.ResponseWriter, r *http.Request) {
	albumID := httphelpers.GetFromRequest[uint](r, "id")
	reason := httphelpers.GetFromRequest[string](r, "reason")

	if _, err := c.moderationService.Reject(albumID, reason); err != nil {
		c.renderGalleryPage(w, r, moderationErrorMessage(err))
		return
	}

	c.renderGalleryPage(w, r, "Album rejected.")
}

/*
POST /admin/gallery/{id}/hide
*/
func (c AdminGalleryController) HideAction(w http.ResponseWriter, r *http.Request) {
	albumID := httphelpers.GetFromRequest[uint](r, "id")

	if _, err := c.moderationService.Hide(albumID); err != nil {
		c.renderGalleryPage(w, r, moderationErrorMessage(err))
		return
	}

	c.renderGalleryPage(w, r, "Album hidden.")
}

/*
GET /admin/gallery/{id}/edit
*/
func (c AdminGalleryController) EditAlbumPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/admin/album-edit"

	albumID := httphelpers.GetFromRequest[uint](r, "id")

	album, err := c.albumService.GetByID(albumID)

	if err != nil {
		httphelpers.WriteText(w, http.StatusNotFound, "album not found")
		return
	}

	viewData := viewmodels.AdminAlbumEdit{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Album: album,
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/gallery/{id}/edit

Empty submitted values clear the matching override so display falls back to
the remote-sourced field.
*/
func (c AdminGalleryController) UpdateOverridesAction(w http.ResponseWriter, r *http.Request) {
	albumID := httphelpers.GetFromRequest[uint](r, "id")

	customTitle := httphelpers.GetFromRequest[string](r, "customTitle")
	customDescription := httphelpers.GetFromRequest[string](r, "customDescription")
	customCoverURL := httphelpers.GetFromRequest[string](r, "customCoverUrl")

	overrides := services.AlbumOverrides{
		CustomTitle:       &customTitle,
		CustomDescription: &customDescription,
		CustomCoverURL:    &customCoverURL,
	}

	if err := c.albumService.UpdateOverrides(albumID, overrides); err != nil {
		if errors.Is(err, models.ErrAlbumNotFound) {
			c.renderGalleryPage(w, r, "That album could not be found.")
			return
		}

		slog.Error("error updating album overrides", "error", err, "albumID", albumID)
		c.renderGalleryPage(w, r, "There was a problem saving the album.")
		return
	}

	c.renderGalleryPage(w, r, "Album saved.")
}

/*
GET /admin/gallery/{id}/cover-picker
*/
func (c AdminGalleryController) CoverPickerPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/admin/cover-picker"

	albumID := httphelpers.GetFromRequest[uint](r, "id")

	album, err := c.albumService.GetByID(albumID)

	if err != nil {
		httphelpers.WriteText(w, http.StatusNotFound, "album not found")
		return
	}

	viewData := viewmodels.AdminCoverPicker{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Album: album,
	}

	photos, err := c.provider.ListAlbumPhotos(r.Context(), album.RemoteID, 100)

	if err != nil {
		slog.Error("error retrieving photos for cover picker", "error", err, "albumID", albumID)
		viewData.IsError = true
		viewData.Message = "There was a problem loading photos from the photo host."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Photos = photos

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /admin/gallery/add
*/
func (c AdminGalleryController) AddAlbumPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/admin/album-add"

	search := httphelpers.GetFromRequest[string](r, "search")

	viewData := viewmodels.AdminAddAlbum{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Search: search,
	}

	candidates, err := c.syncService.ListRemoteCandidates(r.Context(), search)

	if err != nil {
		slog.Error("error listing remote album candidates", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem reaching the photo host."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Candidates = candidates

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/gallery/add
*/
func (c AdminGalleryController) AddAlbumAction(w http.ResponseWriter, r *http.Request) {
	ownerID := httphelpers.GetFromRequest[string](r, "ownerId")
	remoteAlbumID := httphelpers.GetFromRequest[string](r, "remoteAlbumId")

	_, err := c.syncService.AddAlbum(r.Context(), ownerID, remoteAlbumID)

	switch {
	case errors.Is(err, models.ErrDuplicateAlbum):
		c.renderGalleryPage(w, r, "That album has already been imported.")

	case errors.Is(err, photoprovider.ErrNotFound):
		c.renderGalleryPage(w, r, "The photo host does not know that album.")

	case err != nil:
		slog.Error("error adding album manually", "error", err, "remoteAlbumID", remoteAlbumID)
		c.renderGalleryPage(w, r, "There was a problem importing the album.")

	default:
		c.renderGalleryPage(w, r, "Album imported. It is waiting for approval.")
	}
}

func moderationErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidTransition):
		return "That action is not allowed from the album's current status."

	case errors.Is(err, models.ErrAlbumNotFound):
		return "That album no longer exists."

	default:
		slog.Error("moderation action failed", "error", err)
		return "There was a problem updating the album."
	}
}
