package request

// JourneyStop is one stop of an ordered multi-stop request. Sequence runs
// 0..N-1; the first stop is always a pickup and the last a dropoff.
type JourneyStop struct {
	Sequence       int      `json:"sequence"`
	Type           StopType `json:"type"`
	Location       Location `json:"location"`
	UnitNumber     string   `json:"unit_number,omitempty"`
	Floor          int      `json:"floor,omitempty"`
	HasElevator    bool     `json:"has_elevator,omitempty"`
	ParkingInfo    string   `json:"parking_info,omitempty"`
	Instructions   string   `json:"instructions,omitempty"`
	PropertyType   string   `json:"property_type,omitempty"`
	NumberOfRooms  int      `json:"number_of_rooms,omitempty"`
	NumberOfFloors int      `json:"number_of_floors,omitempty"`
}

// InitializeJourneyStops synthesizes the minimal pickup/dropoff pair for a
// journey draft from its flat location fields. Idempotent: an existing
// stop list is left untouched.
func (d *Draft) InitializeJourneyStops() {
	if d.requestType != TypeJourney || len(d.stops) > 0 {
		return
	}
	d.stops = d.synthesizeEndpointStops()
}

// synthesizeEndpointStops builds the two endpoint stops from the flat
// pickup/dropoff fields, copying the draft contact into each location
// block the way the console seeds stop contacts.
func (d *Draft) synthesizeEndpointStops() []JourneyStop {
	pickup := d.pickup
	dropoff := d.dropoff
	if pickup.ContactName == "" {
		pickup.ContactName = d.contact.Name
	}
	if pickup.ContactPhone == "" {
		pickup.ContactPhone = d.contact.Phone
	}
	if dropoff.ContactName == "" {
		dropoff.ContactName = d.contact.Name
	}
	if dropoff.ContactPhone == "" {
		dropoff.ContactPhone = d.contact.Phone
	}

	return []JourneyStop{
		{Sequence: 0, Type: StopPickup, Location: pickup},
		{Sequence: 1, Type: StopDropoff, Location: dropoff},
	}
}

// UpdateStopAddress writes an endpoint address to the flat field and, when
// journey stops exist, rewrites the matching stop's location so both
// representations stay byte-identical for the address. Postcode falls back
// to the comma heuristic when no structured one is supplied.
func (d *Draft) UpdateStopAddress(role StopType, address, postcode string, lat, lng *float64) error {
	if role != StopPickup && role != StopDropoff {
		return ErrInvalidStopRole
	}

	if postcode == "" {
		postcode = PostcodeFromAddress(address)
	}

	loc := Location{
		Address:  address,
		Postcode: postcode,
		Lat:      lat,
		Lng:      lng,
	}

	switch role {
	case StopPickup:
		loc.ContactName = d.pickup.ContactName
		loc.ContactPhone = d.pickup.ContactPhone
		d.pickup = loc
	case StopDropoff:
		loc.ContactName = d.dropoff.ContactName
		loc.ContactPhone = d.dropoff.ContactPhone
		d.dropoff = loc
	}

	for i := range d.stops {
		if d.stops[i].Type == role {
			d.stops[i].Location.Address = loc.Address
			d.stops[i].Location.Postcode = loc.Postcode
			d.stops[i].Location.Lat = loc.Lat
			d.stops[i].Location.Lng = loc.Lng
		}
	}

	d.touch()
	return nil
}

// ReplaceStops installs a full journey stop list. The list must start with
// a pickup, end with a dropoff, and is resequenced 0..N-1.
func (d *Draft) ReplaceStops(stops []JourneyStop) error {
	if d.requestType != TypeJourney {
		return ErrNotJourneyRequest
	}
	if len(stops) < 2 {
		return ErrTooFewStops
	}
	if stops[0].Type != StopPickup {
		return ErrFirstStopNotPickup
	}
	if stops[len(stops)-1].Type != StopDropoff {
		return ErrLastStopNotDropoff
	}
	for i := 1; i < len(stops)-1; i++ {
		if !stops[i].Type.IsValid() {
			return ErrInvalidStopRole
		}
	}

	for i := range stops {
		stops[i].Sequence = i
		if stops[i].Location.Postcode == "" {
			stops[i].Location.Postcode = PostcodeFromAddress(stops[i].Location.Address)
		}
	}

	d.stops = stops
	d.syncEndpointsFromStops()
	d.touch()
	return nil
}

// syncEndpointsFromStops keeps the flat pickup/dropoff fields aligned with
// the endpoint stops after a full list replacement.
func (d *Draft) syncEndpointsFromStops() {
	if len(d.stops) == 0 {
		return
	}
	d.pickup = d.stops[0].Location
	d.dropoff = d.stops[len(d.stops)-1].Location
}

// EnsureStopsForSubmission synthesizes the implicit two-stop list for an
// instant request at submission time, giving bookings a uniform stop
// sequence regardless of request type.
func (d *Draft) EnsureStopsForSubmission() {
	if len(d.stops) > 0 {
		return
	}
	d.stops = d.synthesizeEndpointStops()
}
