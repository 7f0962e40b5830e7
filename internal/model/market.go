package model

import (
	"math"
	"time"
)

// Market item status values (wire format kept from the production API).
const (
	ItemStatusActive     = "Aktif"
	ItemStatusInactive   = "Pasif"
	ItemStatusSoldOut    = "Tükendi"
	ItemStatusComingSoon = "Yakında"
)

// UnlimitedStock is the sentinel for items whose stock is never
// decremented or exhausted.
const UnlimitedStock = -1

// MarketItemCategories are the accepted market item category values.
var MarketItemCategories = []string{
	"Elektronik", "Giyim", "Spor", "Ev & Yaşam", "Kitap", "Oyun", "Hediye Kartı", "Diğer",
}

// MarketItem represents a catalog product redeemable with QP.
type MarketItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Brand          string          `json:"brand"`
	Category       string          `json:"category"`
	QPPrice        int             `json:"qpPrice"`
	RealPrice      float64         `json:"realPrice"`
	Currency       string          `json:"currency"`
	Stock          int             `json:"stock"`
	LevelAccess    string          `json:"levelAccess"`
	MinLevelPoints int             `json:"minLevelPoints"`
	Images         []ItemImage     `json:"images"`
	Status         string          `json:"status"`
	Featured       bool            `json:"featured"`
	Discount       Discount        `json:"discount"`
	Specifications []Specification `json:"specifications"`
	Tags           []string        `json:"tags"`
	Sales          int             `json:"sales"`
	Revenue        float64         `json:"revenue"`
	Rating         Rating          `json:"rating"`
	DeliveryInfo   DeliveryInfo    `json:"deliveryInfo"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// MarketFilter holds the optional predicates of the market list query.
type MarketFilter struct {
	Category    string
	Brand       string // case-insensitive substring
	Status      string
	LevelAccess string
	Featured    *bool
	Search      string // matched across name, description, brand, tags
	MinPrice    *int
	MaxPrice    *int
	InStock     bool
}

// SearchFilter holds the optional predicates of the dedicated search
// endpoint, ANDed on top of the base active-and-in-stock predicate.
type SearchFilter struct {
	Category    string
	Brand       string
	MaxPrice    *int
	LevelAccess string
}

// ItemImage is a product image reference.
type ItemImage struct {
	URL       string `json:"url" validate:"required,notblank"`
	Alt       string `json:"alt"`
	IsPrimary bool   `json:"isPrimary"`
}

// Discount is a time-windowed percentage reduction on the QP price.
type Discount struct {
	Percentage int       `json:"percentage" validate:"gte=0,lte=100"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	IsActive   bool      `json:"isActive"`
}

// InWindow reports whether the discount applies at the given time.
func (d Discount) InWindow(now time.Time) bool {
	return d.IsActive && d.Percentage > 0 &&
		!d.StartDate.After(now) && !d.EndDate.Before(now)
}

// Specification is a key/value product attribute.
type Specification struct {
	Key   string `json:"key" validate:"required,notblank"`
	Value string `json:"value" validate:"required,notblank"`
}

// Rating aggregates user ratings for an item.
type Rating struct {
	Average float64 `json:"average" validate:"gte=0,lte=5"`
	Count   int     `json:"count" validate:"gte=0"`
}

// DeliveryInfo describes how a purchased item is delivered.
type DeliveryInfo struct {
	Type          string `json:"type" validate:"omitempty,oneof=Digital Physical Voucher"`
	EstimatedDays int    `json:"estimatedDays" validate:"gte=0"`
	Description   string `json:"description"`
}

// IsAvailable reports whether the item can currently be purchased:
// active status with stock left or unlimited.
func (m *MarketItem) IsAvailable() bool {
	return m.Status == ItemStatusActive && (m.Stock > 0 || m.Stock == UnlimitedStock)
}

// IsInStock reports whether the item can cover the requested quantity.
func (m *MarketItem) IsInStock(quantity int) bool {
	return m.Stock == UnlimitedStock || m.Stock >= quantity
}

// DiscountedPrice returns the QP price with the discount applied when
// the discount window covers now, rounded half-up to the nearest
// integer; otherwise the plain QP price.
func (m *MarketItem) DiscountedPrice(now time.Time) int {
	if !m.Discount.InWindow(now) {
		return m.QPPrice
	}
	return int(math.Round(float64(m.QPPrice) * (1 - float64(m.Discount.Percentage)/100)))
}

// ReduceStock applies a purchase of the given quantity to the item in
// place. Stock never goes below zero and the unlimited sentinel is
// never decremented; hitting zero flips the status to sold out. Sales
// and revenue accumulate using the discount in effect at now. Returns
// the line total charged.
func (m *MarketItem) ReduceStock(quantity int, now time.Time) int {
	if m.Stock != UnlimitedStock {
		m.Stock -= quantity
		if m.Stock <= 0 {
			m.Stock = 0
			m.Status = ItemStatusSoldOut
		}
	}
	unitPrice := m.DiscountedPrice(now)
	total := unitPrice * quantity
	m.Sales += quantity
	m.Revenue += float64(total)
	return total
}

// MarketItemView is an item decorated with its derived fields.
type MarketItemView struct {
	*MarketItem
	IsAvailable     bool `json:"isAvailable"`
	DiscountedPrice int  `json:"discountedPrice"`
}

// View decorates the item with derived fields evaluated at now.
func (m *MarketItem) View(now time.Time) *MarketItemView {
	return &MarketItemView{
		MarketItem:      m,
		IsAvailable:     m.IsAvailable(),
		DiscountedPrice: m.DiscountedPrice(now),
	}
}

// CreateMarketItemRequest is the DTO for creating a market item.
type CreateMarketItemRequest struct {
	Name           string          `json:"name" validate:"required,notblank,max=100"`
	Description    string          `json:"description" validate:"required,notblank,max=500"`
	Brand          string          `json:"brand" validate:"required,notblank"`
	Category       string          `json:"category" validate:"omitempty,oneof=Elektronik Giyim Spor 'Ev & Yaşam' Kitap Oyun 'Hediye Kartı' 'Diğer'"`
	QPPrice        *int            `json:"qpPrice" validate:"required,gte=1"`
	RealPrice      *float64        `json:"realPrice" validate:"required,gte=0"`
	Currency       string          `json:"currency" validate:"omitempty,oneof=TL USD EUR"`
	Stock          *int            `json:"stock" validate:"omitempty,gte=-1"`
	LevelAccess    string          `json:"levelAccess" validate:"required,oneof='Tüm Seviyeler' Bronze+ Silver+ Gold+ Platinum+ Diamond+"`
	MinLevelPoints *int            `json:"minLevelPoints" validate:"omitempty,gte=0"`
	Images         []ItemImage     `json:"images" validate:"dive"`
	Status         string          `json:"status" validate:"omitempty,oneof=Aktif Pasif 'Tükendi' 'Yakında'"`
	Featured       bool            `json:"featured"`
	Discount       *Discount       `json:"discount"`
	Specifications []Specification `json:"specifications" validate:"dive"`
	Tags           []string        `json:"tags"`
	Sales          *int            `json:"sales" validate:"omitempty,gte=0"`
	Revenue        *float64        `json:"revenue" validate:"omitempty,gte=0"`
	Rating         *Rating         `json:"rating"`
	DeliveryInfo   *DeliveryInfo   `json:"deliveryInfo"`
}

// Item builds a MarketItem from the request, applying defaults.
func (r *CreateMarketItemRequest) Item() *MarketItem {
	m := &MarketItem{
		Name:           r.Name,
		Description:    r.Description,
		Brand:          r.Brand,
		Category:       r.Category,
		QPPrice:        *r.QPPrice,
		RealPrice:      *r.RealPrice,
		Currency:       r.Currency,
		LevelAccess:    r.LevelAccess,
		Images:         r.Images,
		Status:         r.Status,
		Featured:       r.Featured,
		Specifications: r.Specifications,
		Tags:           lowercaseTags(r.Tags),
		DeliveryInfo:   DeliveryInfo{Type: "Digital"},
	}
	if m.Category == "" {
		m.Category = "Hediye Kartı"
	}
	if m.Currency == "" {
		m.Currency = "TL"
	}
	if m.Status == "" {
		m.Status = ItemStatusActive
	}
	if r.Stock != nil {
		m.Stock = *r.Stock
	}
	if r.MinLevelPoints != nil {
		m.MinLevelPoints = *r.MinLevelPoints
	}
	if r.Discount != nil {
		m.Discount = *r.Discount
	}
	if r.Sales != nil {
		m.Sales = *r.Sales
	}
	if r.Revenue != nil {
		m.Revenue = *r.Revenue
	}
	if r.Rating != nil {
		m.Rating = *r.Rating
	}
	if r.DeliveryInfo != nil {
		m.DeliveryInfo = *r.DeliveryInfo
		if m.DeliveryInfo.Type == "" {
			m.DeliveryInfo.Type = "Digital"
		}
	}
	if m.Images == nil {
		m.Images = []ItemImage{}
	}
	if m.Specifications == nil {
		m.Specifications = []Specification{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m
}

// UpdateMarketItemRequest is the DTO for partially updating a market item.
type UpdateMarketItemRequest struct {
	Name           *string         `json:"name" validate:"omitempty,notblank,max=100"`
	Description    *string         `json:"description" validate:"omitempty,notblank,max=500"`
	Brand          *string         `json:"brand" validate:"omitempty,notblank"`
	Category       *string         `json:"category" validate:"omitempty,oneof=Elektronik Giyim Spor 'Ev & Yaşam' Kitap Oyun 'Hediye Kartı' 'Diğer'"`
	QPPrice        *int            `json:"qpPrice" validate:"omitempty,gte=1"`
	RealPrice      *float64        `json:"realPrice" validate:"omitempty,gte=0"`
	Currency       *string         `json:"currency" validate:"omitempty,oneof=TL USD EUR"`
	Stock          *int            `json:"stock" validate:"omitempty,gte=-1"`
	LevelAccess    *string         `json:"levelAccess" validate:"omitempty,oneof='Tüm Seviyeler' Bronze+ Silver+ Gold+ Platinum+ Diamond+"`
	MinLevelPoints *int            `json:"minLevelPoints" validate:"omitempty,gte=0"`
	Images         []ItemImage     `json:"images" validate:"omitempty,dive"`
	Status         *string         `json:"status" validate:"omitempty,oneof=Aktif Pasif 'Tükendi' 'Yakında'"`
	Featured       *bool           `json:"featured"`
	Discount       *Discount       `json:"discount"`
	Specifications []Specification `json:"specifications" validate:"omitempty,dive"`
	Tags           []string        `json:"tags"`
	Rating         *Rating         `json:"rating"`
	DeliveryInfo   *DeliveryInfo   `json:"deliveryInfo"`
}

// ApplyTo merges the non-nil fields of the request onto an existing item.
func (r *UpdateMarketItemRequest) ApplyTo(m *MarketItem) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	if r.Brand != nil {
		m.Brand = *r.Brand
	}
	if r.Category != nil {
		m.Category = *r.Category
	}
	if r.QPPrice != nil {
		m.QPPrice = *r.QPPrice
	}
	if r.RealPrice != nil {
		m.RealPrice = *r.RealPrice
	}
	if r.Currency != nil {
		m.Currency = *r.Currency
	}
	if r.Stock != nil {
		m.Stock = *r.Stock
	}
	if r.LevelAccess != nil {
		m.LevelAccess = *r.LevelAccess
	}
	if r.MinLevelPoints != nil {
		m.MinLevelPoints = *r.MinLevelPoints
	}
	if r.Images != nil {
		m.Images = r.Images
	}
	if r.Status != nil {
		m.Status = *r.Status
	}
	if r.Featured != nil {
		m.Featured = *r.Featured
	}
	if r.Discount != nil {
		m.Discount = *r.Discount
	}
	if r.Specifications != nil {
		m.Specifications = r.Specifications
	}
	if r.Tags != nil {
		m.Tags = lowercaseTags(r.Tags)
	}
	if r.Rating != nil {
		m.Rating = *r.Rating
	}
	if r.DeliveryInfo != nil {
		m.DeliveryInfo = *r.DeliveryInfo
	}
}

// PurchaseRequest is the DTO for purchasing a market item.
type PurchaseRequest struct {
	Quantity *int `json:"quantity" validate:"omitempty,gte=1"`
}

// PurchaseResult is the outcome of a completed purchase.
type PurchaseResult struct {
	Item       *MarketItemView `json:"item"`
	Quantity   int             `json:"quantity"`
	TotalPrice int             `json:"totalPrice"`
}

// CategorySummary is one group of the category aggregation: item count
// and QP price statistics for active items of a category.
type CategorySummary struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avgPrice"`
	MinPrice int     `json:"minPrice"`
	MaxPrice int     `json:"maxPrice"`
}
