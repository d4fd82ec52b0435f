package request

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Location is the address block carried by both flat pickup/dropoff fields
// and journey stops. Serialized as-is into the draft's jsonb columns.
type Location struct {
	Address      string   `json:"address"`
	Postcode     string   `json:"postcode,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	ContactName  string   `json:"contact_name,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
}

// PostcodeFromAddress derives a postcode from the last comma-separated
// token of a raw address. Best-effort fallback when the address lookup
// returned no structured postcode; never authoritative for billing.
func PostcodeFromAddress(address string) string {
	idx := strings.LastIndex(address, ",")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(address[idx+1:])
}

// MovingItem is one line of the request's item list.
type MovingItem struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Quantity    int      `json:"quantity"`
	WeightKG    *float64 `json:"weight_kg,omitempty"`
	Dimensions  *string  `json:"dimensions,omitempty"`
	ValueEUR    *float64 `json:"value_eur,omitempty"`
	Fragile     bool     `json:"fragile"`
	Disassembly bool     `json:"disassembly"`
	PhotoRef    *string  `json:"photo_ref,omitempty"` // opaque blob reference
}

func (i MovingItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrItemNameRequired
	}
	if i.Quantity < 1 {
		return ErrItemQuantityInvalid
	}
	return nil
}

// Schedule is the committed step-3 payload.
type Schedule struct {
	PreferredDate time.Time    `json:"preferred_date"`
	TimeWindow    TimeWindow   `json:"time_window"`
	Speed         ServiceSpeed `json:"speed"`
	Flexible      bool         `json:"flexible"`
}

// Contact is the resolved identity attached to the draft. UserID is set
// once resolution succeeded against a session or stored guest record.
type Contact struct {
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Phone  string     `json:"phone"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

func (c Contact) IsResolved() bool {
	return c.Email != ""
}
