package bizdesk

import (
	"time"
)

// Model is the base struct that all bizdesk records embed.
// The store owns every field: it generates the ID on Add, sets CreatedAt once,
// and moves UpdatedAt forward on every mutation.
type Model struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// reserved JSON names that a Patch may never touch.
var reservedFields = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
}
