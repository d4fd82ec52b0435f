package response

import (
	"wasteops/internal/domain/pricing"
	"wasteops/internal/usecase/commands"

	"github.com/google/uuid"
)

// StepResponse reports the draft's position after a wizard mutation. The
// forecast only appears once the terminal step completed.
type StepResponse struct {
	RequestID      uuid.UUID         `json:"request_id"`
	CompletedSteps int               `json:"completed_steps"`
	Phase          string            `json:"phase"`
	Forecast       *pricing.Forecast `json:"forecast,omitempty"`
}

func FromStepResult(r *commands.SubmitStepResult) StepResponse {
	return StepResponse{
		RequestID:      r.RequestID,
		CompletedSteps: r.CompletedSteps,
		Phase:          string(r.Phase),
		Forecast:       r.Forecast,
	}
}

type ConfirmResponse struct {
	BookingReference string  `json:"booking_reference"`
	TotalPrice       float64 `json:"total_price"`
	IsReplayed       bool    `json:"is_replayed,omitempty"`
}

func FromConfirmResult(r *commands.ConfirmResult) ConfirmResponse {
	return ConfirmResponse{
		BookingReference: r.BookingReference,
		TotalPrice:       r.TotalPrice,
		IsReplayed:       r.IsReplayed,
	}
}
