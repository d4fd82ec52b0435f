package queries

import (
	"context"

	"wasteops/internal/infra"
	"wasteops/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound = errs.New("request not found")
	ErrRequestAccess   = errs.New("request access denied")
)

type RequestReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RequestView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*RequestListItem, error)
}

type RequestQueries interface {
	// GetRequest returns the full request for its owner: the session user,
	// or the guest key the draft was created under.
	GetRequest(ctx context.Context, id uuid.UUID, userID *uuid.UUID, guestKey string) (*RequestView, error)
	// GetByIDSystem bypasses ownership for internal read-after-write.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*RequestView, error)
	GetUserRequests(ctx context.Context, userID uuid.UUID) ([]*RequestListItem, error)
}

type requestQueriesImpl struct {
	readStore RequestReadStore
	owners    OwnershipReader
}

// OwnershipReader exposes just enough of the write side to authorize reads.
type OwnershipReader interface {
	Owner(ctx context.Context, id uuid.UUID) (userID *uuid.UUID, guestKey string, err error)
}

func NewRequestQueries(readStore RequestReadStore, owners OwnershipReader) RequestQueries {
	return &requestQueriesImpl{
		readStore: readStore,
		owners:    owners,
	}
}

func (q *requestQueriesImpl) GetRequest(ctx context.Context, id uuid.UUID, userID *uuid.UUID, guestKey string) (*RequestView, error) {
	ownerID, ownerGuestKey, err := q.owners.Owner(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if !ownerMatches(ownerID, ownerGuestKey, userID, guestKey) {
		// Hide existence from non-owners.
		return nil, ErrRequestNotFound
	}

	return q.GetByIDSystem(ctx, id)
}

func (q *requestQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *requestQueriesImpl) GetUserRequests(ctx context.Context, userID uuid.UUID) ([]*RequestListItem, error) {
	return q.readStore.FindByUserID(ctx, userID)
}

func ownerMatches(ownerID *uuid.UUID, ownerGuestKey string, userID *uuid.UUID, guestKey string) bool {
	if ownerID != nil {
		return userID != nil && *ownerID == *userID
	}
	return ownerGuestKey != "" && ownerGuestKey == guestKey
}
