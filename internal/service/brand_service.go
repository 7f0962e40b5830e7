package service

import (
	"strings"

	"github.com/qappio/qappio-api/internal/model"
)

// BrandService is a read-only directory over the static brand list.
// The list is fixed at construction and never mutated, so lookups are
// safe under concurrent requests.
type BrandService struct {
	brands []model.Brand
}

// NewBrandService creates a BrandService over the given brand list.
// Passing nil uses the built-in directory.
func NewBrandService(brands []model.Brand) *BrandService {
	if brands == nil {
		brands = defaultBrands
	}
	return &BrandService{brands: brands}
}

// List returns brands filtered by exact status and a case-insensitive
// substring match over name and email. Empty filters match everything.
func (s *BrandService) List(status, search string) []model.Brand {
	out := []model.Brand{}
	search = strings.ToLower(search)
	for _, b := range s.brands {
		if status != "" && b.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Name), search) &&
			!strings.Contains(strings.ToLower(b.Email), search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// GetByID returns the brand with the given id, or nil.
func (s *BrandService) GetByID(id string) *model.Brand {
	for i := range s.brands {
		if s.brands[i].ID == id {
			return &s.brands[i]
		}
	}
	return nil
}

// defaultBrands is the static directory served until brands move into
// the store.
var defaultBrands = []model.Brand{
	{
		ID:      "brand-1",
		Name:    "Nike",
		Logo:    "https://example.com/nike-logo.png",
		Email:   "contact@nike.com",
		Balance: 50000,
		Status:  "Aktif",
		Website: "https://nike.com",
		Social:  model.BrandSocial{Instagram: "@nike", Twitter: "@nike", Facebook: "nike"},
	},
	{
		ID:      "brand-2",
		Name:    "Starbucks",
		Logo:    "https://example.com/starbucks-logo.png",
		Email:   "info@starbucks.com",
		Balance: 75000,
		Status:  "Aktif",
		Website: "https://starbucks.com",
		Social:  model.BrandSocial{Instagram: "@starbucks", Twitter: "@starbucks", Facebook: "starbucks"},
	},
	{
		ID:      "brand-3",
		Name:    "Samsung",
		Logo:    "https://example.com/samsung-logo.png",
		Email:   "contact@samsung.com",
		Balance: 120000,
		Status:  "Aktif",
		Website: "https://samsung.com",
		Social:  model.BrandSocial{Instagram: "@samsung", Twitter: "@samsung", Facebook: "samsung"},
	},
}
