package model

import (
	"fmt"
	"strings"
	"time"
)

// Task status values (wire format kept from the production API).
const (
	TaskStatusActive    = "Aktif"
	TaskStatusInactive  = "Pasif"
	TaskStatusPending   = "Beklemede"
	TaskStatusCompleted = "Tamamlandı"
)

// TaskCategories are the accepted task category values.
var TaskCategories = []string{
	"Sosyal Medya", "Fotoğraf", "Video", "Anket", "İçerik Üretimi", "Pazarlama", "Araştırma",
}

// Task represents a brand-sponsored activity users complete for QP rewards.
type Task struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Brand           string    `json:"brand"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
	Budget          float64   `json:"budget"`
	Participants    int       `json:"participants"`
	MaxParticipants int       `json:"maxParticipants"`
	Reward          int       `json:"reward"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	IsWeekly        bool      `json:"isWeekly"`
	IsSponsored     bool      `json:"isSponsored"`
	SponsorBrand    string    `json:"sponsorBrand,omitempty"`
	Requirements    []string  `json:"requirements"`
	Tags            []string  `json:"tags"`
	Featured        bool      `json:"featured"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TaskFilter holds the optional predicates of the task list query.
type TaskFilter struct {
	Status      string
	Brand       string // case-insensitive substring
	Category    string
	IsWeekly    *bool
	IsSponsored *bool
	Featured    *bool
}

// Normalize enforces the weekly/featured coupling: a weekly task is
// always featured. Called before every persist, on both create and
// update paths.
func (t *Task) Normalize() {
	if t.IsWeekly {
		t.Featured = true
	}
	t.Tags = lowercaseTags(t.Tags)
}

// IsActive reports whether the task currently accepts participation:
// active status, inside its date window, with capacity left.
func (t *Task) IsActive(now time.Time) bool {
	return t.Status == TaskStatusActive &&
		!t.StartDate.After(now) &&
		!t.EndDate.Before(now) &&
		t.Participants < t.MaxParticipants
}

// IsExpired reports whether the task's end date has passed.
func (t *Task) IsExpired(now time.Time) bool {
	return now.After(t.EndDate)
}

// RemainingTime is the breakdown of time left until a task's deadline.
type RemainingTime struct {
	Days      int    `json:"days"`
	Hours     int    `json:"hours"`
	Minutes   int    `json:"minutes"`
	Total     int64  `json:"total"` // milliseconds
	IsExpired bool   `json:"isExpired"`
	Formatted string `json:"formatted"`
}

// RemainingTime computes the time left until the deadline. Units are
// floored; the formatted string concatenates only non-zero units. A
// sub-minute remainder still reads "1dk" so the UI never shows an
// empty countdown for a live task.
func (t *Task) RemainingTime(now time.Time) RemainingTime {
	if !now.Before(t.EndDate) {
		return RemainingTime{IsExpired: true, Formatted: "Süre Doldu"}
	}

	diff := t.EndDate.Sub(now).Milliseconds()
	days := int(diff / (1000 * 60 * 60 * 24))
	hours := int(diff % (1000 * 60 * 60 * 24) / (1000 * 60 * 60))
	minutes := int(diff % (1000 * 60 * 60) / (1000 * 60))

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dg ", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%ds ", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%ddk", minutes)
	}
	formatted := strings.TrimSpace(b.String())
	if formatted == "" {
		formatted = "1dk"
	}

	return RemainingTime{
		Days:      days,
		Hours:     hours,
		Minutes:   minutes,
		Total:     diff,
		IsExpired: false,
		Formatted: formatted,
	}
}

// DeadlineStatus is a display tag for where a task sits relative to
// its date window.
type DeadlineStatus struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	Color  string `json:"color"`
}

// DeadlineStatus returns one of three mutually exclusive states:
// waiting (before start), expired (at or past end), active (otherwise).
func (t *Task) DeadlineStatus(now time.Time) DeadlineStatus {
	switch {
	case now.Before(t.StartDate):
		return DeadlineStatus{Status: "waiting", Text: "Başlamadı", Color: "gray"}
	case !now.Before(t.EndDate):
		return DeadlineStatus{Status: "expired", Text: "Süre Doldu", Color: "red"}
	default:
		return DeadlineStatus{Status: "active", Text: TaskStatusActive, Color: "green"}
	}
}

// TaskView is a task decorated with its derived fields for list and
// detail responses.
type TaskView struct {
	*Task
	IsActive       bool           `json:"isActive"`
	IsExpired      bool           `json:"isExpired"`
	RemainingTime  RemainingTime  `json:"remainingTime"`
	DeadlineStatus DeadlineStatus `json:"deadlineStatus"`
}

// View decorates the task with derived fields evaluated at now.
func (t *Task) View(now time.Time) *TaskView {
	return &TaskView{
		Task:           t,
		IsActive:       t.IsActive(now),
		IsExpired:      t.IsExpired(now),
		RemainingTime:  t.RemainingTime(now),
		DeadlineStatus: t.DeadlineStatus(now),
	}
}

// CreateTaskRequest is the DTO for creating a task.
type CreateTaskRequest struct {
	Title           string     `json:"title" validate:"required,notblank,max=100"`
	Description     string     `json:"description" validate:"required,notblank,max=500"`
	Brand           string     `json:"brand" validate:"required,notblank"`
	Category        string     `json:"category" validate:"omitempty,oneof='Sosyal Medya' 'Fotoğraf' Video Anket 'İçerik Üretimi' Pazarlama 'Araştırma'"`
	Status          string     `json:"status" validate:"omitempty,oneof=Aktif Pasif Beklemede 'Tamamlandı'"`
	Budget          *float64   `json:"budget" validate:"required,gte=0"`
	Participants    *int       `json:"participants" validate:"omitempty,gte=0"`
	MaxParticipants *int       `json:"maxParticipants" validate:"omitempty,gte=1"`
	Reward          *int       `json:"reward" validate:"required,gte=1"`
	StartDate       *time.Time `json:"startDate" validate:"required"`
	EndDate         *time.Time `json:"endDate" validate:"required"`
	IsWeekly        bool       `json:"isWeekly"`
	IsSponsored     bool       `json:"isSponsored"`
	SponsorBrand    string     `json:"sponsorBrand"`
	Requirements    []string   `json:"requirements"`
	Tags            []string   `json:"tags"`
	Featured        bool       `json:"featured"`
}

// Task builds a Task from the request, applying defaults.
func (r *CreateTaskRequest) Task() *Task {
	t := &Task{
		Title:           r.Title,
		Description:     r.Description,
		Brand:           r.Brand,
		Category:        r.Category,
		Status:          r.Status,
		Budget:          *r.Budget,
		MaxParticipants: 100,
		Reward:          *r.Reward,
		StartDate:       *r.StartDate,
		EndDate:         *r.EndDate,
		IsWeekly:        r.IsWeekly,
		IsSponsored:     r.IsSponsored,
		SponsorBrand:    r.SponsorBrand,
		Requirements:    r.Requirements,
		Tags:            r.Tags,
		Featured:        r.Featured,
	}
	if t.Category == "" {
		t.Category = "Fotoğraf"
	}
	if t.Status == "" {
		t.Status = TaskStatusActive
	}
	if r.Participants != nil {
		t.Participants = *r.Participants
	}
	if r.MaxParticipants != nil {
		t.MaxParticipants = *r.MaxParticipants
	}
	if t.Requirements == nil {
		t.Requirements = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// UpdateTaskRequest is the DTO for partially updating a task.
type UpdateTaskRequest struct {
	Title           *string    `json:"title" validate:"omitempty,notblank,max=100"`
	Description     *string    `json:"description" validate:"omitempty,notblank,max=500"`
	Brand           *string    `json:"brand" validate:"omitempty,notblank"`
	Category        *string    `json:"category" validate:"omitempty,oneof='Sosyal Medya' 'Fotoğraf' Video Anket 'İçerik Üretimi' Pazarlama 'Araştırma'"`
	Status          *string    `json:"status" validate:"omitempty,oneof=Aktif Pasif Beklemede 'Tamamlandı'"`
	Budget          *float64   `json:"budget" validate:"omitempty,gte=0"`
	Participants    *int       `json:"participants" validate:"omitempty,gte=0"`
	MaxParticipants *int       `json:"maxParticipants" validate:"omitempty,gte=1"`
	Reward          *int       `json:"reward" validate:"omitempty,gte=1"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	IsWeekly        *bool      `json:"isWeekly"`
	IsSponsored     *bool      `json:"isSponsored"`
	SponsorBrand    *string    `json:"sponsorBrand"`
	Requirements    []string   `json:"requirements"`
	Tags            []string   `json:"tags"`
	Featured        *bool      `json:"featured"`
}

// ApplyTo merges the non-nil fields of the request onto an existing task.
func (r *UpdateTaskRequest) ApplyTo(t *Task) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Brand != nil {
		t.Brand = *r.Brand
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Budget != nil {
		t.Budget = *r.Budget
	}
	if r.Participants != nil {
		t.Participants = *r.Participants
	}
	if r.MaxParticipants != nil {
		t.MaxParticipants = *r.MaxParticipants
	}
	if r.Reward != nil {
		t.Reward = *r.Reward
	}
	if r.StartDate != nil {
		t.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		t.EndDate = *r.EndDate
	}
	if r.IsWeekly != nil {
		t.IsWeekly = *r.IsWeekly
	}
	if r.IsSponsored != nil {
		t.IsSponsored = *r.IsSponsored
	}
	if r.SponsorBrand != nil {
		t.SponsorBrand = *r.SponsorBrand
	}
	if r.Requirements != nil {
		t.Requirements = r.Requirements
	}
	if r.Tags != nil {
		t.Tags = r.Tags
	}
	if r.Featured != nil {
		t.Featured = *r.Featured
	}
}

func lowercaseTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = strings.ToLower(strings.TrimSpace(tag))
	}
	return out
}
