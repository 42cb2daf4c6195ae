package http

import (
	"time"

	"github.com/khoahotran/social-api/internal/domain/follow"
	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/internal/domain/profile"
	"github.com/khoahotran/social-api/internal/domain/user"
)

const birthDateLayout = "2006-01-02"

type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type AuthorDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func ToUserDTO(u user.User) UserDTO {
	return UserDTO{ID: u.ID.String(), Email: u.Email}
}

func ToUserDTOs(users []user.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}
	return dtos
}

// Profile DTOs

type ProfileDTO struct {
	ID             string  `json:"id"`
	User           UserDTO `json:"user"`
	ProfilePicture *string `json:"profile_picture"`
	Bio            string  `json:"bio"`
	Location       string  `json:"location"`
	BirthDate      *string `json:"birth_date"`
}

func ToProfileDTO(p *profile.Profile) ProfileDTO {
	dto := ProfileDTO{
		ID:             p.ID.String(),
		User:           ToUserDTO(p.User),
		ProfilePicture: p.PictureURL,
		Bio:            p.Bio,
		Location:       p.Location,
	}
	if p.BirthDate != nil {
		s := p.BirthDate.Format(birthDateLayout)
		dto.BirthDate = &s
	}
	return dto
}

func ToProfileDTOs(profiles []*profile.Profile) []ProfileDTO {
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = ToProfileDTO(p)
	}
	return dtos
}

// Follow DTOs

type FollowRequest struct {
	UserID string `json:"user_id"`
}

type FollowDTO struct {
	ID        string    `json:"id"`
	Follower  UserDTO   `json:"follower"`
	Following UserDTO   `json:"following"`
	CreatedAt time.Time `json:"created_at"`
}

func ToFollowDTOs(follows []*follow.Follow) []FollowDTO {
	dtos := make([]FollowDTO, len(follows))
	for i, f := range follows {
		dtos[i] = FollowDTO{
			ID:        f.ID.String(),
			Follower:  ToUserDTO(f.Follower),
			Following: ToUserDTO(f.Following),
			CreatedAt: f.CreatedAt,
		}
	}
	return dtos
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

// Post DTOs

type PostDTO struct {
	ID            string     `json:"id"`
	Author        AuthorDTO  `json:"author"`
	Content       string     `json:"content"`
	Image         *string    `json:"image"`
	CreatedAt     time.Time  `json:"created_at"`
	LikesCount    int        `json:"likes_count"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	IsPublished   bool       `json:"is_published"`
	Hashtags      []string   `json:"hashtags"`
}

func ToPostDTO(p *post.Post) PostDTO {
	return PostDTO{
		ID: p.ID.String(),
		Author: AuthorDTO{
			ID:       p.AuthorID.String(),
			Email:    p.Author.Email,
			Username: p.Author.Username,
		},
		Content:       p.Content,
		Image:         p.ImageURL,
		CreatedAt:     p.CreatedAt,
		LikesCount:    p.LikesCount,
		ScheduledTime: p.ScheduledTime,
		IsPublished:   p.IsPublished,
		Hashtags:      p.Hashtags(),
	}
}

func ToPostDTOs(posts []*post.Post) []PostDTO {
	dtos := make([]PostDTO, len(posts))
	for i, p := range posts {
		dtos[i] = ToPostDTO(p)
	}
	return dtos
}
