package model

// Brand is a read-only directory entry for a partner brand.
type Brand struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Logo    string      `json:"logo"`
	Email   string      `json:"email"`
	Balance float64     `json:"balance"`
	Status  string      `json:"status"`
	Website string      `json:"website"`
	Social  BrandSocial `json:"social"`
}

// BrandSocial holds a brand's social media handles.
type BrandSocial struct {
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
}
