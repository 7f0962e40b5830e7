package model

import "time"

// Level represents a point-based tier in the platform.
type Level struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Color        string        `json:"color"`
	MinPoints    int           `json:"minPoints"`
	MaxPoints    int           `json:"maxPoints"`
	Order        int           `json:"order"`
	Benefits     []string      `json:"benefits"`
	MarketAccess bool          `json:"marketAccess"`
	SpecialPerks []SpecialPerk `json:"specialPerks"`
	Icon         string        `json:"icon,omitempty"`
	IsActive     bool          `json:"isActive"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// SpecialPerk is an extra benefit attached to a level.
type SpecialPerk struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

// QualifiesFor reports whether a point total falls inside this level's range.
func (l *Level) QualifiesFor(points int) bool {
	return points >= l.MinPoints && points <= l.MaxPoints
}

// OverlapsRange reports whether [min, max] intersects this level's range.
func (l *Level) OverlapsRange(min, max int) bool {
	return l.MinPoints <= max && l.MaxPoints >= min
}

// CreateLevelRequest is the DTO for creating a level.
type CreateLevelRequest struct {
	Name         string        `json:"name" validate:"required,notblank,max=50"`
	Color        string        `json:"color" validate:"required,hexcolor"`
	MinPoints    *int          `json:"minPoints" validate:"required,gte=0"`
	MaxPoints    *int          `json:"maxPoints" validate:"required,gte=1"`
	Order        *int          `json:"order" validate:"required,gte=1"`
	Benefits     []string      `json:"benefits"`
	MarketAccess *bool         `json:"marketAccess"`
	SpecialPerks []SpecialPerk `json:"specialPerks" validate:"dive"`
	Icon         string        `json:"icon"`
	IsActive     *bool         `json:"isActive"`
}

// Level builds a Level from the request, applying defaults.
func (r *CreateLevelRequest) Level() *Level {
	l := &Level{
		Name:         r.Name,
		Color:        r.Color,
		MinPoints:    *r.MinPoints,
		MaxPoints:    *r.MaxPoints,
		Order:        *r.Order,
		Benefits:     r.Benefits,
		MarketAccess: true,
		SpecialPerks: r.SpecialPerks,
		Icon:         r.Icon,
		IsActive:     true,
	}
	if r.MarketAccess != nil {
		l.MarketAccess = *r.MarketAccess
	}
	if r.IsActive != nil {
		l.IsActive = *r.IsActive
	}
	if l.Benefits == nil {
		l.Benefits = []string{}
	}
	if l.SpecialPerks == nil {
		l.SpecialPerks = []SpecialPerk{}
	}
	return l
}

// UpdateLevelRequest is the DTO for partially updating a level.
// Nil fields are left unchanged.
type UpdateLevelRequest struct {
	Name         *string       `json:"name" validate:"omitempty,notblank,max=50"`
	Color        *string       `json:"color" validate:"omitempty,hexcolor"`
	MinPoints    *int          `json:"minPoints" validate:"omitempty,gte=0"`
	MaxPoints    *int          `json:"maxPoints" validate:"omitempty,gte=1"`
	Order        *int          `json:"order" validate:"omitempty,gte=1"`
	Benefits     []string      `json:"benefits"`
	MarketAccess *bool         `json:"marketAccess"`
	SpecialPerks []SpecialPerk `json:"specialPerks" validate:"omitempty,dive"`
	Icon         *string       `json:"icon"`
	IsActive     *bool         `json:"isActive"`
}

// ApplyTo merges the non-nil fields of the request onto an existing level.
func (r *UpdateLevelRequest) ApplyTo(l *Level) {
	if r.Name != nil {
		l.Name = *r.Name
	}
	if r.Color != nil {
		l.Color = *r.Color
	}
	if r.MinPoints != nil {
		l.MinPoints = *r.MinPoints
	}
	if r.MaxPoints != nil {
		l.MaxPoints = *r.MaxPoints
	}
	if r.Order != nil {
		l.Order = *r.Order
	}
	if r.Benefits != nil {
		l.Benefits = r.Benefits
	}
	if r.MarketAccess != nil {
		l.MarketAccess = *r.MarketAccess
	}
	if r.SpecialPerks != nil {
		l.SpecialPerks = r.SpecialPerks
	}
	if r.Icon != nil {
		l.Icon = *r.Icon
	}
	if r.IsActive != nil {
		l.IsActive = *r.IsActive
	}
}

// LevelOrderUpdate is a single entry of a reorder request.
type LevelOrderUpdate struct {
	ID    string `json:"id" validate:"required,notblank"`
	Order int    `json:"order" validate:"gte=1"`
}

// ReorderLevelsRequest is the DTO for bulk order updates.
type ReorderLevelsRequest struct {
	LevelOrders []LevelOrderUpdate `json:"levelOrders" validate:"required,dive"`
}

// ReorderResult reports which order updates applied and which ids
// did not resolve to a level.
type ReorderResult struct {
	Updated   []*Level `json:"updated"`
	FailedIDs []string `json:"failedIds"`
}

// LevelByPointsResponse bundles the level matched by a point total
// with the next tier above it.
type LevelByPointsResponse struct {
	CurrentLevel *Level `json:"currentLevel"`
	NextLevel    *Level `json:"nextLevel"`
	PointsToNext *int   `json:"pointsToNext"`
}
