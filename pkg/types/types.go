package types

// ExportFormatInfo describes an export format for listings.
type ExportFormatInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Label     string `json:"label"`
	Container string `json:"container"`
}

// ThemeInfo describes a theme for listings.
type ThemeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Primary     string `json:"primary"`
	Accent      string `json:"accent"`
	Default     bool   `json:"default,omitempty"`
}
