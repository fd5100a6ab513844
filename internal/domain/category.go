package domain

import (
	"strings"
	"time"
)

// Category groups products for browsing. Products reference it by CategoryID.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// Display fills the defaults shown for incomplete records.
func (c Category) Display() Category {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = "Unnamed Category"
	}
	if strings.TrimSpace(c.Slug) == "" {
		c.Slug = c.ID
	}
	return c
}
