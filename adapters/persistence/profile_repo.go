package persistence

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/domain/profile"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

var profileColumns = []string{
	"p.id", "p.user_id", "u.email", "u.username",
	"p.profile_picture", "p.bio", "p.location", "p.birth_date",
}

func selectProfiles() sq.SelectBuilder {
	return psql.Select(profileColumns...).
		From("profiles p").
		Join("users u ON u.id = p.user_id")
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	var birthDate *time.Time
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.User.Email,
		&p.User.Username,
		&p.PictureURL,
		&p.Bio,
		&p.Location,
		&birthDate,
	)
	if err != nil {
		return nil, err
	}
	p.User.ID = p.UserID
	p.BirthDate = birthDate
	return p, nil
}

func (r *postgresProfileRepo) Create(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, profile_picture, bio, location, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.UserID, p.PictureURL, p.Bio, p.Location, p.BirthDate)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Profile already exists for user", zap.String("user_id", p.UserID.String()))
			return apperror.NewConflict("Profile", "user", p.UserID.String())
		}
		return apperror.NewInternal("failed to create profile", err)
	}
	return nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles SET
			profile_picture = $2, bio = $3, location = $4, birth_date = $5
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, p.ID, p.PictureURL, p.Bio, p.Location, p.BirthDate)
	if err != nil {
		return apperror.NewInternal("failed to update profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("Profile", p.ID.String())
	}
	return nil
}

func (r *postgresProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("Profile", id.String())
	}
	return nil
}

func (r *postgresProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	query, args, err := selectProfiles().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile query", err)
	}

	p, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NewNotFound("Profile", id.String())
		}
		return nil, apperror.NewInternal("failed to query profile", err)
	}
	return p, nil
}

// List matches Search case-insensitively against the owner's email, the bio
// and the location.
func (r *postgresProfileRepo) List(ctx context.Context, q profile.ListQuery) ([]*profile.Profile, error) {
	builder := selectProfiles().OrderBy("u.email ASC")
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"u.email": pattern},
			sq.ILike{"p.bio": pattern},
			sq.ILike{"p.location": pattern},
		})
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit)).Offset(uint64(q.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query profiles", err)
	}
	defer rows.Close()

	profiles := make([]*profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan profile row", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profile rows", err)
	}
	return profiles, nil
}
