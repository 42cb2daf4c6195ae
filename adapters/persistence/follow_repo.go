package persistence

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/social-api/internal/domain/follow"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/apperror"
)

type postgresFollowRepo struct {
	db *pgxpool.Pool
}

func NewPostgresFollowRepo(db *pgxpool.Pool) follow.Repository {
	return &postgresFollowRepo{db: db}
}

func selectFollows() sq.SelectBuilder {
	return psql.Select(
		"f.id", "f.follower_id", "fu.email", "fu.username",
		"f.following_id", "tu.email", "tu.username", "f.created_at",
	).
		From("follows f").
		Join("users fu ON fu.id = f.follower_id").
		Join("users tu ON tu.id = f.following_id")
}

func scanFollow(row pgx.Row) (*follow.Follow, error) {
	f := &follow.Follow{}
	err := row.Scan(
		&f.ID,
		&f.FollowerID, &f.Follower.Email, &f.Follower.Username,
		&f.FollowingID, &f.Following.Email, &f.Following.Username,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Follower.ID = f.FollowerID
	f.Following.ID = f.FollowingID
	return f, nil
}

// GetOrCreate relies on the (follower_id, following_id) unique constraint so
// concurrent follows of the same pair leave exactly one row.
func (r *postgresFollowRepo) GetOrCreate(ctx context.Context, followerID, followingID uuid.UUID) (*follow.Follow, bool, error) {
	insert := `
		INSERT INTO follows (id, follower_id, following_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`
	cmdTag, err := r.db.Exec(ctx, insert, uuid.New(), followerID, followingID)
	if err != nil {
		return nil, false, apperror.NewInternal("failed to insert follow", err)
	}
	created := cmdTag.RowsAffected() == 1

	query, args, err := selectFollows().
		Where(sq.Eq{"f.follower_id": followerID, "f.following_id": followingID}).
		ToSql()
	if err != nil {
		return nil, false, apperror.NewInternal("failed to build follow query", err)
	}
	f, err := scanFollow(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			// unfollowed between the two statements; the follow itself went through
			return &follow.Follow{
				FollowerID:  followerID,
				FollowingID: followingID,
				Follower:    user.User{ID: followerID},
				Following:   user.User{ID: followingID},
				CreatedAt:   time.Now(),
			}, created, nil
		}
		return nil, false, apperror.NewInternal("failed to query follow", err)
	}
	return f, created, nil
}

func (r *postgresFollowRepo) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		return false, apperror.NewInternal("failed to delete follow", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func (r *postgresFollowRepo) ListByFollower(ctx context.Context, followerID uuid.UUID) ([]*follow.Follow, error) {
	query, args, err := selectFollows().
		Where(sq.Eq{"f.follower_id": followerID}).
		OrderBy("f.created_at DESC", "f.id").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build follow list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query follows", err)
	}
	defer rows.Close()

	follows := make([]*follow.Follow, 0)
	for rows.Next() {
		f, err := scanFollow(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan follow row", err)
		}
		follows = append(follows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating follow rows", err)
	}
	return follows, nil
}

func (r *postgresFollowRepo) ListFollowers(ctx context.Context, userID uuid.UUID) ([]user.User, error) {
	return r.listUsers(ctx, "f.follower_id", "f.following_id", userID)
}

func (r *postgresFollowRepo) ListFollowing(ctx context.Context, userID uuid.UUID) ([]user.User, error) {
	return r.listUsers(ctx, "f.following_id", "f.follower_id", userID)
}

// listUsers returns the users on the joinCol side of every edge whose
// filterCol equals userID.
func (r *postgresFollowRepo) listUsers(ctx context.Context, joinCol, filterCol string, userID uuid.UUID) ([]user.User, error) {
	query, args, err := psql.Select("u.id", "u.email", "u.username").
		From("follows f").
		Join("users u ON u.id = " + joinCol).
		Where(sq.Eq{filterCol: userID}).
		OrderBy("f.created_at DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build follow user query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query follow users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.User, error) {
		var u user.User
		err := row.Scan(&u.ID, &u.Email, &u.Username)
		return u, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan follow users", err)
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}
