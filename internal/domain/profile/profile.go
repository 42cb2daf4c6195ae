package profile

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/khoahotran/social-api/internal/domain/user"
)

const MaxLocationLength = 100

var ErrLocationTooLong = errors.New("location must be at most 100 characters")

type Profile struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	User       user.User  `json:"user"`
	PictureURL *string    `json:"profile_picture"`
	Bio        string     `json:"bio"`
	Location   string     `json:"location"`
	BirthDate  *time.Time `json:"birth_date"`
}

func (p *Profile) Validate() error {
	if utf8.RuneCountInString(p.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	return nil
}

func (p *Profile) IsOwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

type ListQuery struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context, q ListQuery) ([]*Profile, error)
}
