package services

import (
	"math"

	"shopfront/internal/domain"
)

type Direction int

const (
	Decrease Direction = iota
	Increase
)

// ChangeQuantity applies one stepper press. Bounds are silent: it never goes
// below 1 and never increases past maxStock.
func ChangeQuantity(current int, dir Direction, maxStock int) int {
	if dir == Increase {
		if current < maxStock {
			return current + 1
		}
		return current
	}
	return max(1, current-1)
}

// QuantityLimit is the stepper ceiling for p. Buying listings are unbounded.
func QuantityLimit(p domain.DisplayProduct) int {
	if p.Buying {
		return math.MaxInt
	}
	return p.Stock
}

// ClampQuantity normalizes a requested quantity into [1, limit]. The lower
// bound wins when limit is below 1.
func ClampQuantity(q, limit int) int {
	return max(1, min(q, limit))
}
