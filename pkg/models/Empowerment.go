package models

import (
	"fmt"
	"strings"
)

var ErrEmpowermentNotFound = fmt.Errorf("empowerment not found")

/*
Empowerment is one tagged story entry: a short write-up of an outreach
activity or student success story shown on the home and get-involved pages.
Tags are stored as a comma separated list.
*/
type Empowerment struct {
	BaseModel

	Title       string
	Body        string
	ImageURL    string `db:"image_url"`
	Tags        string
	IsPublished bool `db:"is_published"`
}

func (e *Empowerment) TagList() []string {
	var result []string

	for _, tag := range strings.Split(e.Tags, ",") {
		tag = strings.TrimSpace(tag)

		if tag != "" {
			result = append(result, tag)
		}
	}

	return result
}

func (e *Empowerment) HasTag(tag string) bool {
	for _, t := range e.TagList() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}

	return false
}
