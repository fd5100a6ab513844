// Package delivery computes delivery fees in minor units.
package delivery

import (
	"strings"
)

const (
	// FreeThreshold is the subtotal (500.00) at or above which delivery is free.
	FreeThreshold int64 = 50000
	// FlatFee is charged when no free-delivery rule applies (25.00).
	FlatFee int64 = 2500
)

const (
	ReasonThreshold = "threshold"
	ReasonZone      = "zone"
	ReasonNone      = "none"
)

// Cities lists the destinations offered at checkout. "Other" accepts any city.
var Cities = []string{
	"Rabat", "Sale", "Casablanca", "Marrakech", "Fes", "Tangier", "Agadir", "Meknes",
	"Oujda", "Kenitra", "Tetouan", "Safi", "El Jadida", "Nador", "Mohammedia", "Other",
}

var freeZone = map[string]struct{}{
	"rabat": {},
	"sale":  {},
}

// Quote explains a fee decision.
type Quote struct {
	Fee    int64  `json:"deliveryFee"`
	Free   bool   `json:"free"`
	Reason string `json:"reason"`
	// Remaining is how much more subtotal unlocks free delivery, zero when already free.
	Remaining int64 `json:"remainingForFree"`
}

// Policy is the fixed storefront delivery rule set.
type Policy struct{}

// Fee returns the delivery fee for a subtotal and destination city.
func (Policy) Fee(subtotal int64, city string) int64 {
	return QuoteFor(subtotal, city).Fee
}

// Quote returns the fee together with the rule that decided it.
func (Policy) Quote(subtotal int64, city string) Quote {
	return QuoteFor(subtotal, city)
}

// QuoteFor evaluates the threshold rule first, then the free zone.
func QuoteFor(subtotal int64, city string) Quote {
	switch {
	case subtotal >= FreeThreshold:
		return Quote{Fee: 0, Free: true, Reason: ReasonThreshold}
	case InFreeZone(city):
		return Quote{Fee: 0, Free: true, Reason: ReasonZone}
	default:
		return Quote{Fee: FlatFee, Reason: ReasonNone, Remaining: FreeThreshold - subtotal}
	}
}

// InFreeZone reports whether city is exempt from the delivery fee.
// Matching ignores case and surrounding space and accepts "Salé".
func InFreeZone(city string) bool {
	_, ok := freeZone[normalizeCity(city)]
	return ok
}

func normalizeCity(city string) string {
	c := strings.ToLower(strings.TrimSpace(city))
	return strings.ReplaceAll(c, "é", "e")
}
