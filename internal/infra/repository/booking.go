package repository

import (
	"context"
	"time"

	"wasteops/internal/domain/request"
	"wasteops/internal/infra"
	"wasteops/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, db infra.DBTX, b *request.Booking) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bookings (id, request_id, reference, service_date, staff_count, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID(), b.RequestID(), b.Reference(), b.ServiceDate(), b.StaffCount(), b.TotalPrice(), b.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err, infra.KindDuplicateKey)
	}
	return nil
}

func (r *BookingRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*request.Booking, error) {
	var (
		id          uuid.UUID
		reqID       uuid.UUID
		reference   string
		serviceDate time.Time
		staffCount  int
		totalPrice  float64
		createdAt   time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, request_id, reference, service_date, staff_count, total_price, created_at
		FROM bookings WHERE request_id = $1`,
		requestID,
	).Scan(&id, &reqID, &reference, &serviceDate, &staffCount, &totalPrice, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	return request.ReconstructBooking(id, reqID, reference, serviceDate, staffCount, totalPrice, createdAt), nil
}
