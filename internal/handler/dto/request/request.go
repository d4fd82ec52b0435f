package request

import (
	"github.com/google/uuid"
)

// Step payloads are strict per-step subsets of the draft; the envelope
// carries the request id (absent only for step 1 on create) plus one
// section per step. Field-level validation happens in the command layer so
// errors come back as a field→message map, not a bind failure.
type SubmitStepRequest struct {
	RequestID *uuid.UUID    `json:"request_id,omitempty"`
	Locations *LocationsStep `json:"locations,omitempty"`
	Items     *ItemsStep     `json:"items,omitempty"`
	Schedule  *ScheduleStep  `json:"schedule,omitempty"`
}

type LocationsStep struct {
	RequestType     string        `json:"request_type"`
	PickupAddress   string        `json:"pickup_address"`
	PickupPostcode  string        `json:"pickup_postcode,omitempty"`
	PickupLat       *float64      `json:"pickup_lat,omitempty"`
	PickupLng       *float64      `json:"pickup_lng,omitempty"`
	DropoffAddress  string        `json:"dropoff_address"`
	DropoffPostcode string        `json:"dropoff_postcode,omitempty"`
	DropoffLat      *float64      `json:"dropoff_lat,omitempty"`
	DropoffLng      *float64      `json:"dropoff_lng,omitempty"`
	Stops           []StopPayload `json:"stops,omitempty"`
	// Property details for the endpoints of a journey request whose stop
	// list is synthesized server-side. Address fields inside are ignored.
	PickupDetails  *StopPayload `json:"pickup_details,omitempty"`
	DropoffDetails *StopPayload `json:"dropoff_details,omitempty"`
}

type StopPayload struct {
	Type           string   `json:"type"`
	Address        string   `json:"address"`
	Postcode       string   `json:"postcode,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lng            *float64 `json:"lng,omitempty"`
	UnitNumber     string   `json:"unit_number,omitempty"`
	Floor          int      `json:"floor,omitempty"`
	HasElevator    bool     `json:"has_elevator,omitempty"`
	ParkingInfo    string   `json:"parking_info,omitempty"`
	Instructions   string   `json:"instructions,omitempty"`
	PropertyType   string   `json:"property_type,omitempty"`
	NumberOfRooms  int      `json:"number_of_rooms,omitempty"`
	NumberOfFloors int      `json:"number_of_floors,omitempty"`
}

type ItemsStep struct {
	Items []ItemPayload `json:"items"`
}

type ItemPayload struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Quantity    int      `json:"quantity"`
	WeightKG    *float64 `json:"weight_kg,omitempty"`
	Dimensions  *string  `json:"dimensions,omitempty"`
	ValueEUR    *float64 `json:"value_eur,omitempty"`
	Fragile     bool     `json:"fragile"`
	Disassembly bool     `json:"disassembly"`
	PhotoRef    *string  `json:"photo_ref,omitempty"`
}

type ScheduleStep struct {
	PreferredDate string `json:"preferred_date"`
	TimeWindow    string `json:"time_window"`
	ServiceSpeed  string `json:"service_speed"`
	Flexible      bool   `json:"flexible"`
}

type SelectPriceRequest struct {
	Date       string  `json:"date"`
	StaffCount int     `json:"staff_count"`
	Price      float64 `json:"price"`
}

type CaptureContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
