package commands

import (
	"context"

	"wasteops/internal/domain/identity"
	"wasteops/internal/domain/request"
	"wasteops/internal/pkg/clock"
	"wasteops/internal/pkg/errs"
)

var ErrIdentityLookup = errs.New("contact identity lookup failed")

// ContactResolver decides whether the acting party already has a usable
// contact identity, without re-prompting a guest who gave details before.
type ContactResolver interface {
	Resolve(ctx context.Context, d *request.Draft, actor Actor) (identity.Resolution, error)
}

type contactResolverImpl struct {
	users  UserDirectory
	guests GuestIdentityStore
	clock  clock.Clock
}

func NewContactResolver(users UserDirectory, guests GuestIdentityStore, clock clock.Clock) ContactResolver {
	return &contactResolverImpl{
		users:  users,
		guests: guests,
		clock:  clock,
	}
}

// Resolve evaluates the fixed priority chain:
//  1. authenticated session (short-circuits; guest storage never consulted)
//  2. stored guest identity within the validity window
//  3. contact already captured on this draft
//  4. legacy single-field record, migrated forward
//  5. nothing; the caller must block on a capture step
func (r *contactResolverImpl) Resolve(ctx context.Context, d *request.Draft, actor Actor) (identity.Resolution, error) {
	if actor.UserID != nil {
		view, err := r.users.FindByID(ctx, *actor.UserID)
		if err != nil {
			return identity.NeedsCapture(), errs.Mark(err, ErrIdentityLookup)
		}
		id := *actor.UserID
		return identity.Resolved(identity.Guest{
			UserID:  &id,
			Name:    view.Name,
			Email:   view.Email,
			Phone:   phoneOrEmpty(view.Phone),
			SavedAt: r.clock.Now(),
		}, identity.SourceSession), nil
	}

	now := r.clock.Now()

	if actor.GuestKey != "" {
		stored, err := r.guests.Get(ctx, actor.GuestKey)
		if err != nil {
			return identity.NeedsCapture(), errs.Mark(err, ErrIdentityLookup)
		}
		if stored != nil && stored.Usable(now) {
			return identity.Resolved(*stored, identity.SourceStored), nil
		}
	}

	if contact := d.Contact(); contact.IsResolved() {
		return identity.Resolved(identity.Guest{
			UserID:  contact.UserID,
			Name:    contact.Name,
			Email:   contact.Email,
			Phone:   contact.Phone,
			SavedAt: now,
		}, identity.SourceDraft), nil
	}

	if actor.GuestKey != "" {
		raw, err := r.guests.GetLegacy(ctx, actor.GuestKey)
		if err != nil {
			return identity.NeedsCapture(), errs.Mark(err, ErrIdentityLookup)
		}
		if g, ok := identity.ParseLegacy(raw, now); ok {
			// Migrate forward; new storage is preferred on the next read.
			if putErr := r.guests.Put(ctx, actor.GuestKey, g); putErr != nil {
				return identity.NeedsCapture(), errs.Mark(putErr, ErrIdentityLookup)
			}
			return identity.Resolved(g, identity.SourceLegacy), nil
		}
	}

	return identity.NeedsCapture(), nil
}

func phoneOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
