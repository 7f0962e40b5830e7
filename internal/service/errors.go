package service

import "errors"

var (
	// ErrLevelNotFound is returned when a level id or point lookup resolves to nothing
	ErrLevelNotFound = errors.New("level not found")

	// ErrTaskNotFound is returned when a task id resolves to nothing
	ErrTaskNotFound = errors.New("task not found")

	// ErrItemNotFound is returned when a market item id resolves to nothing
	ErrItemNotFound = errors.New("market item not found")

	// ErrDuplicateName is returned when a level name collides with an existing level
	ErrDuplicateName = errors.New("level name already exists")

	// ErrDuplicateOrder is returned when a level order collides with an existing level
	ErrDuplicateOrder = errors.New("level order already exists")

	// ErrLevelOverlap is returned when a level's point range intersects another active level
	ErrLevelOverlap = errors.New("point ranges cannot overlap with existing levels")

	// ErrDateOrder is returned when a task's end date is not after its start date
	ErrDateOrder = errors.New("end date must be after start date")

	// ErrTaskFull is returned when a task has no participation capacity left
	ErrTaskFull = errors.New("task is full")

	// ErrTaskExpired is returned when participation is attempted past the end date
	ErrTaskExpired = errors.New("task has expired")

	// ErrOutOfStock is returned when a purchase exceeds the remaining stock
	ErrOutOfStock = errors.New("insufficient stock")

	// ErrItemUnavailable is returned when a purchase targets a non-active item
	ErrItemUnavailable = errors.New("item is not available for purchase")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)
