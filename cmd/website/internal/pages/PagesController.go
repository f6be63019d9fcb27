package pages

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/viewmodels"
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/services"
)

type PagesHandlers interface {
	AboutPage(w http.ResponseWriter, r *http.Request)
	ImpactPage(w http.ResponseWriter, r *http.Request)
	GetInvolvedPage(w http.ResponseWriter, r *http.Request)
}

type PagesControllerConfig struct {
	AlbumService       services.AlbumServicer
	EmpowermentService services.EmpowermentServicer
	Renderer           rendering.TemplateRenderer
	SettingsService    services.SettingsServicer
	TeamService        services.TeamServicer
}

// PagesController serves the static-ish marketing pages whose content comes
// out of the settings, team, and empowerment tables.
type PagesController struct {
	albumService       services.AlbumServicer
	empowermentService services.EmpowermentServicer
	renderer           rendering.TemplateRenderer
	settingsService    services.SettingsServicer
	teamService        services.TeamServicer
}

func NewPagesController(config PagesControllerConfig) PagesController {
	return PagesController{
		albumService:       config.AlbumService,
		empowermentService: config.EmpowermentService,
		renderer:           config.Renderer,
		settingsService:    config.SettingsService,
		teamService:        config.TeamService,
	}
}

/*
GET /about
*/
func (c PagesController) AboutPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/about"

	viewData := viewmodels.AboutPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	blurb, err := c.settingsService.Get(models.SettingAboutBlurb)

	if err != nil {
		slog.Error("error retrieving about blurb", "error", err)
	}

	viewData.AboutBlurb = blurb

	roster, err := c.teamService.GetRoster()

	if err != nil {
		slog.Error("error retrieving team roster", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading the team roster."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Roster = roster

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /impact
*/
func (c PagesController) ImpactPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/impact"

	viewData := viewmodels.ImpactPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	settings, err := c.settingsService.GetAll()

	if err != nil {
		slog.Error("error retrieving settings for impact page", "error", err)
	} else {
		viewData.StudentsReached = settings[models.SettingImpactStudents]
		viewData.SchoolsVisited = settings[models.SettingImpactSchools]
	}

	counts, err := c.albumService.GetStatusCounts()

	if err != nil {
		slog.Error("error retrieving album counts", "error", err)
	} else {
		viewData.AlbumCount = counts.Approved
	}

	stories, _, err := c.empowermentService.GetList(services.EmpowermentListOptions{
		PublishedOnly: true,
		Tag:           "impact",
		Page:          1,
		PageSize:      6,
	})

	if err != nil {
		slog.Error("error retrieving impact stories", "error", err)
	} else {
		viewData.Stories = stories
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /get-involved
*/
func (c PagesController) GetInvolvedPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/get-involved"

	viewData := viewmodels.GetInvolvedPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	settings, err := c.settingsService.GetAll()

	if err != nil {
		slog.Error("error retrieving settings for get involved page", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading this page."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.ContactEmail = settings[models.SettingContactEmail]
	viewData.InstagramURL = settings[models.SettingInstagramURL]
	viewData.FacebookURL = settings[models.SettingFacebookURL]
	viewData.DonateURL = settings[models.SettingDonateURL]

	stories, _, err := c.empowermentService.GetList(services.EmpowermentListOptions{
		PublishedOnly: true,
		Tag:           "volunteer",
		Page:          1,
		PageSize:      3,
	})

	if err != nil {
		slog.Error("error retrieving volunteer stories", "error", err)
	} else {
		viewData.Stories = stories
	}

	c.renderer.Render(pageName, viewData, w)
}
