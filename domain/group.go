package domain

import "time"

// MaxGroupMembers caps the member list at creation time.
const MaxGroupMembers = 10

// Group is the authoritative membership record for a named group.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasMember reports whether identity belongs to the group.
func (g Group) HasMember(identity string) bool {
	for _, m := range g.Members {
		if m == identity {
			return true
		}
	}
	return false
}
