package repository

import (
	"context"
	"encoding/json"
	"time"

	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"
	"wasteops/internal/infra"
	"wasteops/internal/pkg/clock"
	"wasteops/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `
	id, request_type, status, phase, completed_steps, user_id, guest_key,
	pickup, dropoff, stops, items, schedule,
	contact_name, contact_email, contact_phone, contact_user_id,
	forecast, selected_date, selected_staff_count, selected_price,
	created_at, updated_at`

type RequestRepository struct {
	db    *pgxpool.Pool
	clock clock.Clock
}

func NewRequestRepository(db *pgxpool.Pool, clk clock.Clock) *RequestRepository {
	return &RequestRepository{db: db, clock: clk}
}

func (r *RequestRepository) Create(ctx context.Context, db infra.DBTX, d *request.Draft) error {
	row, err := draftToRow(d)
	if err != nil {
		return infra.WrapRepoErr("failed to encode draft", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO service_requests (
			id, request_type, status, phase, completed_steps, user_id, guest_key,
			pickup, dropoff, stops, items, schedule,
			contact_name, contact_email, contact_phone, contact_user_id,
			forecast, selected_date, selected_staff_count, selected_price,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22
		)`,
		row.args()...,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create service request", err)
	}
	return nil
}

func (r *RequestRepository) Find(ctx context.Context, id uuid.UUID) (*request.Draft, error) {
	row := r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM service_requests WHERE id = $1`, id)
	d, err := scanDraft(row, r.clock)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("service request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service request", err)
	}
	return d, nil
}

func (r *RequestRepository) Save(ctx context.Context, db infra.DBTX, d *request.Draft) error {
	row, err := draftToRow(d)
	if err != nil {
		return infra.WrapRepoErr("failed to encode draft", err)
	}

	tag, err := db.Exec(ctx, `
		UPDATE service_requests SET
			request_type = $2, status = $3, phase = $4, completed_steps = $5,
			pickup = $6, dropoff = $7, stops = $8, items = $9, schedule = $10,
			contact_name = $11, contact_email = $12, contact_phone = $13, contact_user_id = $14,
			forecast = $15, selected_date = $16, selected_staff_count = $17, selected_price = $18,
			updated_at = $19
		WHERE id = $1`,
		d.ID(), row.requestType, row.status, row.phase, row.completedSteps,
		row.pickup, row.dropoff, row.stops, row.items, row.schedule,
		row.contactName, row.contactEmail, row.contactPhone, row.contactUserID,
		row.forecast, row.selectedDate, row.selectedStaffCount, row.selectedPrice,
		row.updatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save service request", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("service request not found", nil, infra.KindNotFound)
	}
	return nil
}

// CompareAndSetPhase flips the persisted phase only if it still holds
// `from`. Zero rows affected means another writer got there first.
func (r *RequestRepository) CompareAndSetPhase(ctx context.Context, id uuid.UUID, from, to request.Phase) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE service_requests SET phase = $3, updated_at = now()
		WHERE id = $1 AND phase = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to transition request phase", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("request phase changed concurrently", nil, infra.KindConflict)
	}
	return nil
}

// Owner returns just the ownership columns, for read-side authorization
// without hydrating the whole draft.
func (r *RequestRepository) Owner(ctx context.Context, id uuid.UUID) (*uuid.UUID, string, error) {
	var (
		userID   *uuid.UUID
		guestKey string
	)
	err := r.db.QueryRow(ctx,
		`SELECT user_id, guest_key FROM service_requests WHERE id = $1`, id,
	).Scan(&userID, &guestKey)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("service request not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to read request owner", err)
	}
	return userID, guestKey, nil
}

// ---------------------------------------------------------------------------
// row mapping
// ---------------------------------------------------------------------------

type requestRow struct {
	id                 uuid.UUID
	requestType        string
	status             string
	phase              string
	completedSteps     int
	userID             *uuid.UUID
	guestKey           string
	pickup             []byte
	dropoff            []byte
	stops              []byte
	items              []byte
	schedule           []byte
	contactName        string
	contactEmail       string
	contactPhone       string
	contactUserID      *uuid.UUID
	forecast           []byte
	selectedDate       *time.Time
	selectedStaffCount *int
	selectedPrice      *float64
	createdAt          time.Time
	updatedAt          time.Time
}

func (r requestRow) args() []any {
	return []any{
		r.id, r.requestType, r.status, r.phase, r.completedSteps, r.userID, r.guestKey,
		r.pickup, r.dropoff, r.stops, r.items, r.schedule,
		r.contactName, r.contactEmail, r.contactPhone, r.contactUserID,
		r.forecast, r.selectedDate, r.selectedStaffCount, r.selectedPrice,
		r.createdAt, r.updatedAt,
	}
}

func draftToRow(d *request.Draft) (requestRow, error) {
	row := requestRow{
		id:             d.ID(),
		requestType:    d.RequestType().String(),
		status:         d.Status().String(),
		phase:          string(d.Phase()),
		completedSteps: d.CompletedSteps(),
		userID:         d.UserID(),
		guestKey:       d.GuestKey(),
		contactName:    d.Contact().Name,
		contactEmail:   d.Contact().Email,
		contactPhone:   d.Contact().Phone,
		contactUserID:  d.Contact().UserID,
		createdAt:      d.CreatedAt(),
		updatedAt:      d.UpdatedAt(),
	}

	var err error
	if row.pickup, err = json.Marshal(d.Pickup()); err != nil {
		return requestRow{}, err
	}
	if row.dropoff, err = json.Marshal(d.Dropoff()); err != nil {
		return requestRow{}, err
	}
	stops := d.Stops()
	if stops == nil {
		stops = []request.JourneyStop{}
	}
	if row.stops, err = json.Marshal(stops); err != nil {
		return requestRow{}, err
	}
	items := d.Items()
	if items == nil {
		items = []request.MovingItem{}
	}
	if row.items, err = json.Marshal(items); err != nil {
		return requestRow{}, err
	}
	if s := d.Schedule(); s != nil {
		if row.schedule, err = json.Marshal(s); err != nil {
			return requestRow{}, err
		}
	}
	if f := d.Forecast(); f != nil {
		if row.forecast, err = json.Marshal(f); err != nil {
			return requestRow{}, err
		}
	}
	if sel := d.Selection(); sel != nil {
		date, parseErr := time.Parse(pricing.DateLayout, sel.Date)
		if parseErr != nil {
			return requestRow{}, parseErr
		}
		row.selectedDate = &date
		row.selectedStaffCount = &sel.StaffCount
		row.selectedPrice = &sel.Price
	}

	return row, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner, clk clock.Clock) (*request.Draft, error) {
	var r requestRow
	if err := row.Scan(
		&r.id, &r.requestType, &r.status, &r.phase, &r.completedSteps, &r.userID, &r.guestKey,
		&r.pickup, &r.dropoff, &r.stops, &r.items, &r.schedule,
		&r.contactName, &r.contactEmail, &r.contactPhone, &r.contactUserID,
		&r.forecast, &r.selectedDate, &r.selectedStaffCount, &r.selectedPrice,
		&r.createdAt, &r.updatedAt,
	); err != nil {
		return nil, err
	}
	return rowToDraft(r, clk)
}

func rowToDraft(r requestRow, clk clock.Clock) (*request.Draft, error) {
	var pickup, dropoff request.Location
	if err := json.Unmarshal(r.pickup, &pickup); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.dropoff, &dropoff); err != nil {
		return nil, err
	}

	var stops []request.JourneyStop
	if err := json.Unmarshal(r.stops, &stops); err != nil {
		return nil, err
	}
	var items []request.MovingItem
	if err := json.Unmarshal(r.items, &items); err != nil {
		return nil, err
	}

	var schedule *request.Schedule
	if len(r.schedule) > 0 {
		schedule = &request.Schedule{}
		if err := json.Unmarshal(r.schedule, schedule); err != nil {
			return nil, err
		}
	}
	var forecast *pricing.Forecast
	if len(r.forecast) > 0 {
		forecast = &pricing.Forecast{}
		if err := json.Unmarshal(r.forecast, forecast); err != nil {
			return nil, err
		}
	}

	var selection *pricing.Selection
	if r.selectedDate != nil && r.selectedStaffCount != nil && r.selectedPrice != nil {
		selection = &pricing.Selection{
			Date:       r.selectedDate.Format(pricing.DateLayout),
			StaffCount: *r.selectedStaffCount,
			Price:      *r.selectedPrice,
		}
	}

	contact := request.Contact{
		Name:   r.contactName,
		Email:  r.contactEmail,
		Phone:  r.contactPhone,
		UserID: r.contactUserID,
	}

	return request.ReconstructDraft(
		r.id,
		request.Type(r.requestType),
		request.Status(r.status),
		request.Phase(r.phase),
		r.completedSteps,
		r.userID,
		r.guestKey,
		pickup, dropoff,
		stops, items,
		schedule,
		contact,
		forecast,
		selection,
		r.createdAt, r.updatedAt,
		clk,
	), nil
}
