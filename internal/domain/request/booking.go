package request

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Booking is the finalized outcome of a confirmed draft.
type Booking struct {
	id          uuid.UUID
	requestID   uuid.UUID
	reference   string
	serviceDate time.Time
	staffCount  int
	totalPrice  float64
	createdAt   time.Time
}

// NewBooking freezes the confirmed selection into a booking. The draft
// must have passed ConfirmBooked's checks first.
func NewBooking(d *Draft, now time.Time) (*Booking, error) {
	if d.selection == nil {
		return nil, ErrSelectionMismatch
	}

	serviceDate, err := time.Parse("2006-01-02", d.selection.Date)
	if err != nil {
		return nil, ErrSelectionMismatch
	}

	id := uuid.New()
	return &Booking{
		id:          id,
		requestID:   d.id,
		reference:   bookingReference(id),
		serviceDate: serviceDate,
		staffCount:  d.selection.StaffCount,
		totalPrice:  d.selection.Price,
		createdAt:   now,
	}, nil
}

func ReconstructBooking(id, requestID uuid.UUID, reference string, serviceDate time.Time, staffCount int, totalPrice float64, createdAt time.Time) *Booking {
	return &Booking{
		id:          id,
		requestID:   requestID,
		reference:   reference,
		serviceDate: serviceDate,
		staffCount:  staffCount,
		totalPrice:  totalPrice,
		createdAt:   createdAt,
	}
}

func (b *Booking) ID() uuid.UUID          { return b.id }
func (b *Booking) RequestID() uuid.UUID   { return b.requestID }
func (b *Booking) Reference() string      { return b.reference }
func (b *Booking) ServiceDate() time.Time { return b.serviceDate }
func (b *Booking) StaffCount() int        { return b.staffCount }
func (b *Booking) TotalPrice() float64    { return b.totalPrice }
func (b *Booking) CreatedAt() time.Time   { return b.createdAt }

func bookingReference(id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return "WO-" + short
}
