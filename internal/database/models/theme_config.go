package models

// ThemeConfig is the single global branding row, editable only by a
// superadmin. The SPA projects it onto the live document (CSS custom
// properties, title, favicon).
type ThemeConfig struct {
	Base
	PrimaryColor    string `gorm:"size:20" json:"primary_color"`
	SecondaryColor  string `gorm:"size:20" json:"secondary_color"`
	BackgroundColor string `gorm:"size:20" json:"background_color"`
	Font            string `gorm:"size:100" json:"font"`
	LayoutMode      string `gorm:"size:20" json:"layout_mode"` // sidebar, topbar
	AppTitle        string `gorm:"size:255" json:"app_title"`
	AppSlogan       string `gorm:"size:255" json:"app_slogan"`
	LogoURL         string `gorm:"size:500" json:"logo_url,omitempty"`
	FaviconURL      string `gorm:"size:500" json:"favicon_url,omitempty"`
}

func (ThemeConfig) TableName() string {
	return "theme_configs"
}
