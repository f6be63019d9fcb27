package home

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/viewmodels"
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/services"
)

type HomeHandlers interface {
	HomePage(w http.ResponseWriter, r *http.Request)
}

type HomeControllerConfig struct {
	AlbumService       services.AlbumServicer
	EmpowermentService services.EmpowermentServicer
	Renderer           rendering.TemplateRenderer
	SettingsService    services.SettingsServicer
}

type HomeController struct {
	albumService       services.AlbumServicer
	empowermentService services.EmpowermentServicer
	renderer           rendering.TemplateRenderer
	settingsService    services.SettingsServicer
}

func NewHomeController(config HomeControllerConfig) HomeController {
	return HomeController{
		albumService:       config.AlbumService,
		empowermentService: config.EmpowermentService,
		renderer:           config.Renderer,
		settingsService:    config.SettingsService,
	}
}

/*
GET /
*/
func (c HomeController) HomePage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/home"

	viewData := viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/carousel.js"},
			},
		},
		CarouselAlbums: []*models.Album{},
		Stories:        []*models.Empowerment{},
	}

	settings, err := c.settingsService.GetAll()

	if err != nil {
		slog.Error("error retrieving site settings", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading this page."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.HeroTitle = settings[models.SettingHeroTitle]
	viewData.HeroSubtitle = settings[models.SettingHeroSubtitle]
	viewData.HeroImageURL = settings[models.SettingHeroImageURL]
	viewData.DonateURL = settings[models.SettingDonateURL]

	albums, _, err := c.albumService.GetAlbumList(services.AlbumListOptions{
		Viewer:   services.ViewerPublic,
		Page:     1,
		PageSize: 6,
	})

	if err != nil {
		slog.Error("error retrieving carousel albums", "error", err)
	} else {
		viewData.CarouselAlbums = albums
	}

	stories, _, err := c.empowermentService.GetList(services.EmpowermentListOptions{
		PublishedOnly: true,
		Page:          1,
		PageSize:      3,
	})

	if err != nil {
		slog.Error("error retrieving empowerment stories", "error", err)
	} else {
		viewData.Stories = stories
	}

	c.renderer.Render(pageName, viewData, w)
}
