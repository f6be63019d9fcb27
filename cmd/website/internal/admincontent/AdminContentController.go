package admincontent

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/viewmodels"
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/services"
)

type AdminContentHandlers interface {
	SettingsPage(w http.ResponseWriter, r *http.Request)
	SaveSettingsAction(w http.ResponseWriter, r *http.Request)
	EmpowermentListPage(w http.ResponseWriter, r *http.Request)
	EmpowermentEditPage(w http.ResponseWriter, r *http.Request)
	SaveEmpowermentAction(w http.ResponseWriter, r *http.Request)
	DeleteEmpowermentAction(w http.ResponseWriter, r *http.Request)
	TeamPage(w http.ResponseWriter, r *http.Request)
	SaveCategoryAction(w http.ResponseWriter, r *http.Request)
	DeleteCategoryAction(w http.ResponseWriter, r *http.Request)
	MemberEditPage(w http.ResponseWriter, r *http.Request)
	SaveMemberAction(w http.ResponseWriter, r *http.Request)
	DeleteMemberAction(w http.ResponseWriter, r *http.Request)
}

type AdminContentControllerConfig struct {
	EmpowermentService services.EmpowermentServicer
	PageSize           int
	Renderer           rendering.TemplateRenderer
	SettingsService    services.SettingsServicer
	TeamService        services.TeamServicer
}

type AdminContentController struct {
	empowermentService services.EmpowermentServicer
	pageSize           int
	renderer           rendering.TemplateRenderer
	settingsService    services.SettingsServicer
	teamService        services.TeamServicer
}

func NewAdminContentController(config AdminContentControllerConfig) AdminContentController {
	return AdminContentController{
		empowermentService: config.EmpowermentService,
		pageSize:           config.PageSize,
		renderer:           config.Renderer,
		settingsService:    config.SettingsService,
		teamService:        config.TeamService,
	}
}

/*
GET /admin/settings
*/
func (c AdminContentController) SettingsPage(w http.ResponseWriter, r *http.Request) {
	c.renderSettingsPage(w, r, "", false)
}

func (c AdminContentController) renderSettingsPage(w http.ResponseWriter, r *http.Request, message string, isError bool) {
	pageName := "pages/admin/settings"

	viewData := viewmodels.AdminSettings{
		BaseViewModel: viewmodels.BaseViewModel{
			Message: message,
			IsError: isError,
			IsHtmx:  httphelpers.IsHtmx(r),
		},
	}

	settings, err := c.settingsService.GetAll()

	if err != nil {
		slog.Error("error retrieving site settings", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading settings."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Settings = settings

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/settings
*/
func (c AdminContentController) SaveSettingsAction(w http.ResponseWriter, r *http.Request) {
	keys := []string{
		models.SettingHeroTitle,
		models.SettingHeroSubtitle,
		models.SettingHeroImageURL,
		models.SettingContactEmail,
		models.SettingInstagramURL,
		models.SettingFacebookURL,
		models.SettingDonateURL,
		models.SettingAboutBlurb,
		models.SettingImpactStudents,
		models.SettingImpactSchools,
	}

	values := map[string]string{}

	for _, key := range keys {
		values[key] = httphelpers.GetFromRequest[string](r, key)
	}

	if err := c.settingsService.SetAll(values); err != nil {
		slog.Error("error saving site settings", "error", err)
		c.renderSettingsPage(w, r, "There was a problem saving settings.", true)
		return
	}

	c.renderSettingsPage(w, r, "Settings saved.", false)
}

/*
GET /admin/empowerments
*/
func (c AdminContentController) EmpowermentListPage(w http.ResponseWriter, r *http.Request) {
	c.renderEmpowermentList(w, r, "", false)
}

func (c AdminContentController) renderEmpowermentList(w http.ResponseWriter, r *http.Request, message string, isError bool) {
	pageName := "pages/admin/empowerments"

	tag := httphelpers.GetFromRequest[string](r, "tag")
	search := httphelpers.GetFromRequest[string](r, "search")
	page := httphelpers.GetFromRequest[int](r, "page")

	if page < 1 {
		page = 1
	}

	viewData := viewmodels.AdminEmpowermentList{
		BaseViewModel: viewmodels.BaseViewModel{
			Message: message,
			IsError: isError,
			IsHtmx:  httphelpers.IsHtmx(r),
		},
		Tag:    tag,
		Search: search,
		Page:   page,
	}

	empowerments, total, err := c.empowermentService.GetList(services.EmpowermentListOptions{
		Tag:      tag,
		Search:   search,
		Page:     page,
		PageSize: c.pageSize,
	})

	if err != nil {
		slog.Error("error retrieving empowerment stories", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading stories."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Empowerments = empowerments
	viewData.TotalCount = total
	viewData.TotalPages = (total + c.pageSize - 1) / c.pageSize

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /admin/empowerments/{id}/edit

An id of zero renders an empty form for creating a new story.
*/
func (c AdminContentController) EmpowermentEditPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/admin/empowerment-edit"

	id := httphelpers.GetFromRequest[uint](r, "id")

	viewData := viewmodels.AdminEmpowermentEdit{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Empowerment: &models.Empowerment{},
		IsNew:       id == 0,
	}

	if id > 0 {
		empowerment, err := c.empowermentService.GetByID(id)

		if err != nil {
			httphelpers.WriteText(w, http.StatusNotFound, "story not found")
			return
		}

		viewData.Empowerment = empowerment
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/empowerments/{id}/edit
*/
func (c AdminContentController) SaveEmpowermentAction(w http.ResponseWriter, r *http.Request) {
	var (
		err error
	)

	id := httphelpers.GetFromRequest[uint](r, "id")

	empowerment := &models.Empowerment{
		Title:       httphelpers.GetFromRequest[string](r, "title"),
		Body:        httphelpers.GetFromRequest[string](r, "body"),
		ImageURL:    httphelpers.GetFromRequest[string](r, "imageUrl"),
		Tags:        httphelpers.GetFromRequest[string](r, "tags"),
		IsPublished: httphelpers.GetFromRequest[string](r, "isPublished") != "",
	}

	if id > 0 {
		empowerment.ID = id
		err = c.empowermentService.Update(empowerment)
	} else {
		err = c.empowermentService.Create(empowerment)
	}

	if err != nil {
		slog.Error("error saving empowerment story", "error", err, "id", id)
		c.renderEmpowermentList(w, r, "There was a problem saving the story.", true)
		return
	}

	c.renderEmpowermentList(w, r, "Story saved.", false)
}

/*
POST /admin/empowerments/{id}/delete
*/
func (c AdminContentController) DeleteEmpowermentAction(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[uint](r, "id")

	if err := c.empowermentService.Delete(id); err != nil {
		slog.Error("error deleting empowerment story", "error", err, "id", id)
		c.renderEmpowermentList(w, r, "There was a problem deleting the story.", true)
		return
	}

	c.renderEmpowermentList(w, r, "Story deleted.", false)
}

/*
GET /admin/team
*/
func (c AdminContentController) TeamPage(w http.ResponseWriter, r *http.Request) {
	c.renderTeamPage(w, r, "", false)
}

func (c AdminContentController) renderTeamPage(w http.ResponseWriter, r *http.Request, message string, isError bool) {
	pageName := "pages/admin/team"

	viewData := viewmodels.AdminTeam{
		BaseViewModel: viewmodels.BaseViewModel{
			Message: message,
			IsError: isError,
			IsHtmx:  httphelpers.IsHtmx(r),
		},
	}

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
POST /admin/team/categories
*/
func (c AdminContentController) SaveCategoryAction(w http.ResponseWriter, r *http.Request) {
	var (
		err error
	)

	id := httphelpers.GetFromRequest[uint](r, "id")

	category := &models.TeamCategory{
		Name:         httphelpers.GetFromRequest[string](r, "name"),
		DisplayOrder: httphelpers.GetFromRequest[int](r, "displayOrder"),
	}

	if id > 0 {
		category.ID = id
		err = c.teamService.UpdateCategory(category)
	} else {
		err = c.teamService.CreateCategory(category)
	}

	if err != nil {
		slog.Error("error saving team category", "error", err, "id", id)
		c.renderTeamPage(w, r, "There was a problem saving the category.", true)
		return
	}

	c.renderTeamPage(w, r, "Category saved.", false)
}

/*
POST /admin/team/categories/{id}/delete
*/
func (c AdminContentController) DeleteCategoryAction(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[uint](r, "id")

	if err := c.teamService.DeleteCategory(id); err != nil {
		slog.Error("error deleting team category", "error", err, "id", id)
		c.renderTeamPage(w, r, "There was a problem deleting the category.", true)
		return
	}

	c.renderTeamPage(w, r, "Category and its members removed.", false)
}

/*
GET /admin/team/members/{id}/edit

An id of zero renders an empty form for adding a new member.
*/
func (c AdminContentController) MemberEditPage(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/admin/team-member-edit"

	id := httphelpers.GetFromRequest[uint](r, "id")

	viewData := viewmodels.AdminTeamMemberEdit{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Member: &models.TeamMember{},
		IsNew:  id == 0,
	}

	if id > 0 {
		member, err := c.teamService.GetMember(id)

		if err != nil {
			httphelpers.WriteText(w, http.StatusNotFound, "team member not found")
			return
		}

		viewData.Member = member
	}

	roster, err := c.teamService.GetRoster()

	if err != nil {
		slog.Error("error retrieving categories for member edit", "error", err)
	}

	viewData.Categories = roster

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/team/members/{id}/edit
*/
func (c AdminContentController) SaveMemberAction(w http.ResponseWriter, r *http.Request) {
	var (
		err error
	)

	id := httphelpers.GetFromRequest[uint](r, "id")

	member := &models.TeamMember{
		CategoryID:   httphelpers.GetFromRequest[uint](r, "categoryId"),
		Name:         httphelpers.GetFromRequest[string](r, "name"),
		Role:         httphelpers.GetFromRequest[string](r, "role"),
		Bio:          httphelpers.GetFromRequest[string](r, "bio"),
		PhotoURL:     httphelpers.GetFromRequest[string](r, "photoUrl"),
		DisplayOrder: httphelpers.GetFromRequest[int](r, "displayOrder"),
	}

	if id > 0 {
		member.ID = id
		err = c.teamService.UpdateMember(member)
	} else {
		err = c.teamService.CreateMember(member)
	}

	if err != nil {
		slog.Error("error saving team member", "error", err, "id", id)
		c.renderTeamPage(w, r, "There was a problem saving the team member.", true)
		return
	}

	c.renderTeamPage(w, r, "Team member saved.", false)
}

/*
POST /admin/team/members/{id}/delete
*/
func (c AdminContentController) DeleteMemberAction(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[uint](r, "id")

	if err := c.teamService.DeleteMember(id); err != nil {
		slog.Error("error deleting team member", "error", err, "id", id)
		c.renderTeamPage(w, r, "There was a problem deleting the team member.", true)
		return
	}

	c.renderTeamPage(w, r, "Team member removed.", false)
}
