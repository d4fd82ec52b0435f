package components

import (
	"wasteops/internal/infra/guestcache"
	"wasteops/internal/infra/readstore"
	repo_impl "wasteops/internal/infra/repository"
	"wasteops/internal/infra/uow"
	"wasteops/internal/usecase"
	"wasteops/internal/usecase/commands"
	"wasteops/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		uow.NewPostgresTxRunner,
		fx.Annotate(
			repo_impl.NewUserRepository,
			fx.As(new(usecase.AuthRepository)),
		),
		fx.Annotate(
			repo_impl.NewRequestRepository,
			fx.As(new(commands.DraftRepository)),
			fx.As(new(queries.OwnershipReader)),
		),
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
		),
		fx.Annotate(
			repo_impl.NewNotificationRepository,
			fx.As(new(commands.NotificationRepository)),
		),
		fx.Annotate(
			func(store *guestcache.Store) *guestcache.Store { return store },
			fx.As(new(commands.GuestIdentityStore)),
		),
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewRequestReadStore,
			fx.As(new(queries.RequestReadStore)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
			fx.As(new(commands.UserDirectory)),
		),
	),
)
