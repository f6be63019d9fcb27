package models

import "time"

// Setting is one key/value pair of editable site content, things like the
// home page hero title or the contact email address.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time `db:"updated_at"`
}

// Well-known setting keys referenced by the public pages.
const (
	SettingHeroTitle      = "hero_title"
	SettingHeroSubtitle   = "hero_subtitle"
	SettingHeroImageURL   = "hero_image_url"
	SettingContactEmail   = "contact_email"
	SettingInstagramURL   = "instagram_url"
	SettingFacebookURL    = "facebook_url"
	SettingDonateURL      = "donate_url"
	SettingAboutBlurb     = "about_blurb"
	SettingImpactStudents = "impact_students_reached"
	SettingImpactSchools  = "impact_schools_visited"
)
