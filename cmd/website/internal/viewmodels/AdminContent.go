package viewmodels

import (
	"github.com/brightsteps/brightstepsngo/pkg/models"
)

type AdminSettings struct {
	BaseViewModel

	Settings map[string]string
}

type AdminEmpowermentList struct {
	BaseViewModel

	Empowerments []*models.Empowerment
	TotalCount   int
	Tag          string
	Search       string
	Page         int
	TotalPages   int
}

type AdminEmpowermentEdit struct {
	BaseViewModel

	Empowerment *models.Empowerment
	IsNew       bool
}

type AdminTeam struct {
	BaseViewModel

	Roster []*models.TeamCategory
}

type AdminTeamMemberEdit struct {
	BaseViewModel

	Member     *models.TeamMember
	Categories []*models.TeamCategory
	IsNew      bool
}
