package diagram

import "slices"

// BringToFront returns order with ids moved to the end, keeping their
// relative order.
func BringToFront(order, ids []string) []string {
	rest, picked := partition(order, ids)
	return append(rest, picked...)
}

// SendToBack returns order with ids moved to the start, keeping their
// relative order.
func SendToBack(order, ids []string) []string {
	rest, picked := partition(order, ids)
	return append(picked, rest...)
}

// MoveForward swaps each selected ID with the unselected ID just above it.
func MoveForward(order, ids []string) []string {
	out := slices.Clone(order)
	for i := len(out) - 2; i >= 0; i-- {
		if slices.Contains(ids, out[i]) && !slices.Contains(ids, out[i+1]) {
			out[i], out[i+1] = out[i+1], out[i]
		}
	}
	return out
}

// MoveBackward swaps each selected ID with the unselected ID just below it.
func MoveBackward(order, ids []string) []string {
	out := slices.Clone(order)
	for i := 1; i < len(out); i++ {
		if slices.Contains(ids, out[i]) && !slices.Contains(ids, out[i-1]) {
			out[i], out[i-1] = out[i-1], out[i]
		}
	}
	return out
}

func partition(order, ids []string) (rest, picked []string) {
	rest = make([]string, 0, len(order))
	for _, id := range order {
		if slices.Contains(ids, id) {
			picked = append(picked, id)
		} else {
			rest = append(rest, id)
		}
	}
	return rest, picked
}
