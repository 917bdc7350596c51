package entities

// PageElement describes a form control found on the page
type PageElement struct {
	Tag         string   `json:"tag"`
	Type        string   `json:"type,omitempty"`
	Name        string   `json:"name,omitempty"`
	ID          string   `json:"id,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Class       string   `json:"class,omitempty"`
	Options     []string `json:"options,omitempty"`
}
