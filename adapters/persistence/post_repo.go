package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/pkg/apperror"
)

type postgresPostRepo struct {
	db *pgxpool.Pool
}

func NewPostgresPostRepo(db *pgxpool.Pool) post.Repository {
	return &postgresPostRepo{db: db}
}

func selectPosts() sq.SelectBuilder {
	return psql.Select(
		"p.id", "p.author_id", "u.email", "u.username",
		"p.content", "p.image", "p.created_at", "p.scheduled_time", "p.is_published",
		"(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count",
	).
		From("posts p").
		Join("users u ON u.id = p.author_id")
}

// feedFilter restricts to published posts, and for a signed-in viewer to
// posts by the viewer or by someone the viewer follows.
func feedFilter(viewer uuid.NullUUID) sq.Sqlizer {
	published := sq.Eq{"p.is_published": true}
	if !viewer.Valid {
		return published
	}
	return sq.And{
		published,
		sq.Or{
			sq.Eq{"p.author_id": viewer.UUID},
			sq.Expr("p.author_id IN (SELECT following_id FROM follows WHERE follower_id = ?)", viewer.UUID),
		},
	}
}

func scanPost(row pgx.Row) (*post.Post, error) {
	p := &post.Post{}
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Author.Email,
		&p.Author.Username,
		&p.Content,
		&p.ImageURL,
		&p.CreatedAt,
		&p.ScheduledTime,
		&p.IsPublished,
		&p.LikesCount,
	)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return p, nil
}

func (r *postgresPostRepo) queryOne(ctx context.Context, builder sq.SelectBuilder, id uuid.UUID) (*post.Post, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build post query", err)
	}
	p, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NewNotFound("Post", id.String())
		}
		return nil, apperror.NewInternal("failed to query post", err)
	}
	return p, nil
}

func (r *postgresPostRepo) queryMany(ctx context.Context, builder sq.SelectBuilder) ([]*post.Post, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build post list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query posts", err)
	}
	defer rows.Close()

	posts := make([]*post.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan post row during iteration", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating post rows", err)
	}
	return posts, nil
}

func paginate(builder sq.SelectBuilder, limit, offset int) sq.SelectBuilder {
	builder = builder.OrderBy("p.created_at DESC", "p.id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit)).Offset(uint64(offset))
	}
	return builder
}

func (r *postgresPostRepo) Save(ctx context.Context, p *post.Post) error {
	query := `
		INSERT INTO posts (id, author_id, content, image, created_at, scheduled_time, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.AuthorID, p.Content, p.ImageURL, p.CreatedAt, p.ScheduledTime, p.IsPublished,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("Post", "id", p.ID.String())
		}
		return apperror.NewInternal("failed to save post", err)
	}
	return nil
}

// Update writes the editable columns only; created_at and is_published are
// fixed at insert time.
func (r *postgresPostRepo) Update(ctx context.Context, p *post.Post) error {
	query := `
		UPDATE posts SET content = $2, image = $3, scheduled_time = $4
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, p.ID, p.Content, p.ImageURL, p.ScheduledTime)
	if err != nil {
		return apperror.NewInternal("failed to update post", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("Post", p.ID.String())
	}
	return nil
}

func (r *postgresPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete post", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("Post", id.String())
	}
	return nil
}

func (r *postgresPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	return r.queryOne(ctx, selectPosts().Where(sq.Eq{"p.id": id}), id)
}

func (r *postgresPostRepo) FindInFeed(ctx context.Context, id uuid.UUID, viewer uuid.NullUUID) (*post.Post, error) {
	return r.queryOne(ctx, selectPosts().Where(sq.Eq{"p.id": id}).Where(feedFilter(viewer)), id)
}

func (r *postgresPostRepo) ListFeed(ctx context.Context, q post.FeedQuery) ([]*post.Post, error) {
	builder := selectPosts().Where(feedFilter(q.Viewer))
	if q.Search != "" {
		builder = builder.Where(sq.ILike{"p.content": "%" + escapeLike(q.Search) + "%"})
	}
	return r.queryMany(ctx, paginate(builder, q.Limit, q.Offset))
}

func (r *postgresPostRepo) ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]*post.Post, error) {
	builder := selectPosts().
		Where(sq.Eq{"p.is_published": true}).
		Where(sq.Like{"p.content": "%#" + escapeLike(tag) + "%"})
	return r.queryMany(ctx, paginate(builder, limit, offset))
}
