package knapsack

import "errors"

var (
	// ErrInvalidCapacity is returned when the capacity is not a positive integer.
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
	// ErrNoItems is returned when the item list is empty.
	ErrNoItems = errors.New("at least one item is required")
	// ErrInvalidItem is returned when an item has a non-positive weight or value.
	ErrInvalidItem = errors.New("item weight and value must be positive integers")
	// ErrCapacityTooLarge is returned when the capacity exceeds the configured limit.
	ErrCapacityTooLarge = errors.New("capacity exceeds the configured limit")
	// ErrTooManyItems is returned when the item count exceeds the configured limit.
	ErrTooManyItems = errors.New("item count exceeds the configured limit")
	// ErrTraceTooLarge is returned when the snapshots of a trace would hold more cells than allowed.
	ErrTraceTooLarge = errors.New("trace would exceed the configured snapshot size")
	// ErrStepOutOfRange is returned when a step index is outside the trace.
	ErrStepOutOfRange = errors.New("step index out of range")
)
