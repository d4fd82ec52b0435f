package commands

import (
	"context"
	"time"

	"wasteops/internal/domain/identity"
	"wasteops/internal/domain/request"
	"wasteops/internal/infra"
	"wasteops/internal/usecase/queries"

	"github.com/google/uuid"
)

// Actor identifies who is driving the wizard: a session user, a guest key,
// or both (guest cookie still present after login; the session wins).
type Actor struct {
	UserID   *uuid.UUID
	GuestKey string
}

type DraftRepository interface {
	Create(ctx context.Context, db infra.DBTX, d *request.Draft) error
	Find(ctx context.Context, id uuid.UUID) (*request.Draft, error)
	Save(ctx context.Context, db infra.DBTX, d *request.Draft) error
	// CompareAndSetPhase transitions the persisted phase only when it still
	// holds `from`; a conflict kind signals the transition was lost.
	CompareAndSetPhase(ctx context.Context, id uuid.UUID, from, to request.Phase) error
}

type BookingRepository interface {
	Create(ctx context.Context, db infra.DBTX, b *request.Booking) error
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*request.Booking, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, db infra.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

// GuestIdentityStore is the key-value persistence for guest contact
// identities. Reads tolerate malformed or expired entries as misses.
type GuestIdentityStore interface {
	Get(ctx context.Context, guestKey string) (*identity.Guest, error)
	GetLegacy(ctx context.Context, guestKey string) (string, error)
	Put(ctx context.Context, guestKey string, g identity.Guest) error
}

// UserDirectory resolves session users into contact identities.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error)
}
