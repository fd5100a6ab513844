package domain

import "strings"

// Customer is the contact and delivery information captured at checkout.
type Customer struct {
	Name    string `json:"customerName" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	City    string `json:"city" validate:"required"`
	Address string `json:"address" validate:"required"`
	Notes   string `json:"notes,omitempty"`
}

// Normalized returns a copy with every field trimmed.
func (c Customer) Normalized() Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		City:    strings.TrimSpace(c.City),
		Address: strings.TrimSpace(c.Address),
		Notes:   strings.TrimSpace(c.Notes),
	}
}
