package domain

import "sort"

// Shift moves every active stage whose order lies in [Lo, Hi] by Delta.
type Shift struct {
	Lo    int
	Hi    int
	Delta int
}

// Contains reports whether order falls in the shifted block.
func (s Shift) Contains(order int) bool {
	return order >= s.Lo && order <= s.Hi
}

// PlanMove returns the block of neighbours that must shift when a stage moves
// from oldOrder to newOrder. ok is false when nothing moves.
//
// Moving lower pushes [newOrder, oldOrder) up by one; moving higher pulls
// (oldOrder, newOrder] down by one. The moved stage itself takes newOrder.
func PlanMove(oldOrder, newOrder int) (Shift, bool) {
	switch {
	case newOrder < oldOrder:
		return Shift{Lo: newOrder, Hi: oldOrder - 1, Delta: 1}, true
	case newOrder > oldOrder:
		return Shift{Lo: oldOrder + 1, Hi: newOrder, Delta: -1}, true
	default:
		return Shift{}, false
	}
}

// PlanInsert returns the shift that opens slot at for a new stage.
// Inserting at maxOrder+1 is an append and shifts nothing.
func PlanInsert(at, maxOrder int) (Shift, bool) {
	if at > maxOrder {
		return Shift{}, false
	}
	return Shift{Lo: at, Hi: maxOrder, Delta: 1}, true
}

// Compact renumbers live stage orders to 1..N, keeping their relative order.
// It closes the gap a hard delete leaves, and any gaps left earlier by soft
// deletes. The result is indexed like orders.
func Compact(orders []int) []int {
	idx := make([]int, len(orders))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return orders[idx[a]] < orders[idx[b]] })

	out := make([]int, len(orders))
	for rank, i := range idx {
		out[i] = rank + 1
	}
	return out
}

// ValidateMove checks newOrder against the funnel's current highest order.
func ValidateMove(newOrder, maxOrder int) error {
	if newOrder < 1 || newOrder > maxOrder {
		return ErrInvalidOrder.WithDetails(OrderRange{Min: 1, Max: maxOrder, Requested: newOrder})
	}
	return nil
}

// ValidateInsert checks an explicit creation order; maxOrder+1 appends.
func ValidateInsert(at, maxOrder int) error {
	if at < 1 || at > maxOrder+1 {
		return ErrInvalidOrder.WithDetails(OrderRange{Min: 1, Max: maxOrder + 1, Requested: at})
	}
	return nil
}

// OrderRange is attached to ErrInvalidOrder so clients can show the bounds.
type OrderRange struct {
	Min       int `json:"min"`
	Max       int `json:"max"`
	Requested int `json:"requested"`
}
