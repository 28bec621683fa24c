package service

import "reservd/pkg/timegrid"

// busyWindow is a half-open minute interval occupied by an active
// reservation.
type busyWindow struct {
	start int
	end   int
}

// openSlots walks the grid anchored at open and keeps every start whose
// full window fits before close and overlaps no busy interval. Walking
// from open by step is what aligns the grid: every returned start is
// open plus a multiple of step.
func openSlots(open, closeAt, slotMin, stepMin int, busy []busyWindow) []int {
	var starts []int
	for cursor := open; cursor+slotMin <= closeAt; cursor += stepMin {
		if isFree(cursor, cursor+slotMin, busy) {
			starts = append(starts, cursor)
		}
	}
	return starts
}

func isFree(start, end int, busy []busyWindow) bool {
	for _, b := range busy {
		if timegrid.Overlaps(start, end, b.start, b.end) {
			return false
		}
	}
	return true
}
