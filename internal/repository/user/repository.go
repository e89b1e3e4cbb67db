package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/restoapp/pos/internal/database"
	"github.com/restoapp/pos/internal/entity"
)

var repoTracer = otel.Tracer("github.com/restoapp/pos/repository/user")

// ErrNotFound is returned when a user is missing.
var ErrNotFound = errors.New("user not found")

// Repository encapsulates staff account access.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// List returns all users ordered by username.
func (r *Repository) List(ctx context.Context) ([]entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.List")
	defer span.End()

	var users []entity.User
	if err := r.reader.NewSelect().Model(&users).Order("username ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return users, nil
}

// GetByUsername fetches one user by login name.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByUsername", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	usr := new(entity.User)
	err := r.reader.NewSelect().Model(usr).Where("username = ?", username).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return usr, nil
}

// UsernameTaken reports whether a username is already claimed by a user other
// than excludeID (zero means no exclusion).
func (r *Repository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.UsernameTaken", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	q := r.reader.NewSelect().
		Model((*entity.User)(nil)).
		Where("username = ?", username)
	if excludeID > 0 {
		q = q.Where("id != ?", excludeID)
	}
	count, err := q.Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return false, err
	}
	return count > 0, nil
}

// Create inserts a user. The seeder passes onConflictIgnore to keep default
// accounts idempotent.
func (r *Repository) Create(ctx context.Context, usr *entity.User, onConflictIgnore bool) error {
	if usr == nil {
		return errors.New("nil user")
	}
	ctx, span := repoTracer.Start(ctx, "UserRepository.Create", trace.WithAttributes(attribute.String("user.username", usr.Username)))
	defer span.End()

	q := r.writer.NewInsert().Model(usr)
	if onConflictIgnore {
		q = q.On("CONFLICT (username) DO NOTHING")
	}
	if _, err := q.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// Update rewrites a user's editable fields.
func (r *Repository) Update(ctx context.Context, usr *entity.User) error {
	if usr == nil {
		return errors.New("nil user")
	}
	ctx, span := repoTracer.Start(ctx, "UserRepository.Update", trace.WithAttributes(attribute.Int64("user.id", usr.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(usr).
		Column("username", "password_hash", "role").
		Set("updated_at = CURRENT_TIMESTAMP").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// Delete removes a user.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.Delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}
