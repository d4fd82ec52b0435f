package readstore

import (
	"context"
	"encoding/json"
	"time"

	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"
	"wasteops/internal/infra"
	"wasteops/internal/pkg/pgconv"
	"wasteops/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestReadStore struct {
	db *pgxpool.Pool
}

func NewRequestReadStore(db *pgxpool.Pool) *RequestReadStore {
	return &RequestReadStore{db: db}
}

func (r *RequestReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.RequestView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT
			sr.id, sr.request_type, sr.status, sr.phase, sr.completed_steps,
			sr.pickup, sr.dropoff, sr.stops, sr.items, sr.schedule,
			sr.contact_name, sr.contact_email, sr.contact_phone,
			sr.forecast, sr.selected_date, sr.selected_staff_count, sr.selected_price,
			b.reference,
			sr.created_at, sr.updated_at
		FROM service_requests sr
		LEFT JOIN bookings b ON b.request_id = sr.id
		WHERE sr.id = $1`,
		id,
	)

	var (
		view          queries.RequestView
		pickupJSON    []byte
		dropoffJSON   []byte
		stopsJSON     []byte
		itemsJSON     []byte
		scheduleJSON  []byte
		forecastJSON  []byte
		selectedDate  *time.Time
	)
	err := row.Scan(
		&view.ID, &view.RequestType, &view.Status, &view.Phase, &view.CompletedSteps,
		&pickupJSON, &dropoffJSON, &stopsJSON, &itemsJSON, &scheduleJSON,
		&view.ContactName, &view.ContactEmail, &view.ContactPhone,
		&forecastJSON, &selectedDate, &view.SelectedStaffCount, &view.SelectedPrice,
		&view.BookingReference,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("service request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service request by ID", err)
	}

	if err := json.Unmarshal(pickupJSON, &view.Pickup); err != nil {
		return nil, infra.WrapRepoErr("failed to decode pickup", err)
	}
	if err := json.Unmarshal(dropoffJSON, &view.Dropoff); err != nil {
		return nil, infra.WrapRepoErr("failed to decode dropoff", err)
	}
	if err := json.Unmarshal(stopsJSON, &view.Stops); err != nil {
		return nil, infra.WrapRepoErr("failed to decode stops", err)
	}
	if err := json.Unmarshal(itemsJSON, &view.Items); err != nil {
		return nil, infra.WrapRepoErr("failed to decode items", err)
	}
	if len(scheduleJSON) > 0 {
		view.Schedule = &request.Schedule{}
		if err := json.Unmarshal(scheduleJSON, view.Schedule); err != nil {
			return nil, infra.WrapRepoErr("failed to decode schedule", err)
		}
	}
	if len(forecastJSON) > 0 {
		view.Forecast = &pricing.Forecast{}
		if err := json.Unmarshal(forecastJSON, view.Forecast); err != nil {
			return nil, infra.WrapRepoErr("failed to decode forecast", err)
		}
	}
	if selectedDate != nil {
		formatted := selectedDate.Format(pricing.DateLayout)
		view.SelectedDate = &formatted
	}

	return &view, nil
}

func (r *RequestReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.RequestListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id, request_type, status, phase,
			pickup->>'address',
			(schedule->>'preferred_date')::timestamptz,
			selected_price,
			created_at
		FROM service_requests
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list requests", err)
	}
	defer rows.Close()

	var items []*queries.RequestListItem
	for rows.Next() {
		var item queries.RequestListItem
		if err := rows.Scan(
			&item.ID, &item.RequestType, &item.Status, &item.Phase,
			&item.PickupAddress, &item.PreferredDate, &item.SelectedPrice,
			&item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan request list row", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read request list", err)
	}
	return items, nil
}
