package domain

import "time"

// Window bounds a history read. Since is exclusive, Until is inclusive.
// A nil bound means unbounded on that side.
type Window struct {
	Since *time.Time
	Until *time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Since != nil && !t.After(*w.Since) {
		return false
	}
	if w.Until != nil && t.After(*w.Until) {
		return false
	}
	return true
}
