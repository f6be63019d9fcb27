package models

import "fmt"

var (
	ErrTeamCategoryNotFound = fmt.Errorf("team category not found")
	ErrTeamMemberNotFound   = fmt.Errorf("team member not found")
)

// TeamCategory groups team members on the about page, e.g. "Board",
// "Volunteers", "Alumni".
type TeamCategory struct {
	BaseModel

	Name         string
	DisplayOrder int `db:"display_order"`
	Members      []TeamMember
}

type TeamMember struct {
	BaseModel

	CategoryID   uint `db:"category_id"`
	Name         string
	Role         string
	Bio          string
	PhotoURL     string `db:"photo_url"`
	DisplayOrder int    `db:"display_order"`
}
