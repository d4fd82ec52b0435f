package queries

import (
	"time"

	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type RequestView struct {
	ID                 uuid.UUID              `json:"id"`
	RequestType        string                 `json:"request_type"`
	Status             string                 `json:"status"`
	Phase              string                 `json:"phase"`
	CompletedSteps     int                    `json:"completed_steps"`
	Pickup             request.Location       `json:"pickup"`
	Dropoff            request.Location       `json:"dropoff"`
	Stops              []request.JourneyStop  `json:"stops"`
	Items              []request.MovingItem   `json:"items"`
	Schedule           *request.Schedule      `json:"schedule,omitempty"`
	ContactName        string                 `json:"contact_name,omitempty"`
	ContactEmail       string                 `json:"contact_email,omitempty"`
	ContactPhone       string                 `json:"contact_phone,omitempty"`
	Forecast           *pricing.Forecast      `json:"forecast,omitempty"`
	SelectedDate       *string                `json:"selected_date,omitempty"`
	SelectedStaffCount *int                   `json:"selected_staff_count,omitempty"`
	SelectedPrice      *float64               `json:"selected_price,omitempty"`
	BookingReference   *string                `json:"booking_reference,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

type RequestListItem struct {
	ID            uuid.UUID  `json:"id"`
	RequestType   string     `json:"request_type"`
	Status        string     `json:"status"`
	Phase         string     `json:"phase"`
	PickupAddress string     `json:"pickup_address"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	SelectedPrice *float64   `json:"selected_price,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Name     string    `json:"name"`
	Phone    *string   `json:"phone,omitempty"`
	IsActive bool      `json:"is_active"`
}
