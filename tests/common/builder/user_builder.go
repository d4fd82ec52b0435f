//go:build unit || e2e

package builder

import (
	"wasteops/internal/domain/user"
	"wasteops/internal/pkg/password"
	"wasteops/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID       uuid.UUID
	Email    string
	Password string
	Role     string
	Name     string
	Phone    *string
	IsActive bool
}

func NewUserBuilder() *UserBuilder {
	phone := "0851234567"
	return &UserBuilder{
		ID:       uuid.New(),
		Email:    "operator@example.com",
		Password: "password1234",
		Role:     "operator",
		Name:     "Aoife Kelly",
		Phone:    &phone,
		IsActive: true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}

	hash, err := password.HashPassword(u.Password)
	if err != nil {
		return nil, err
	}

	return user.NewUser(email, hash, role, u.Name), nil
}

func (u *UserBuilder) BuildView() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Name:     u.Name,
		Phone:    u.Phone,
		IsActive: u.IsActive,
	}
}
