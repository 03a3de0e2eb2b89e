package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/db"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/dberrors"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

const emailUniqueConstraint = "users_email_key"

var userColumns = []string{"id", "application_id", "email", "full_name", "password", "refresh_token", "created_at", "updated_at"}

// UserRepository handles applicant accounts
type UserRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateWithApplicationID mints the next application id and inserts the user in one transaction.
// A failed insert rolls the counter back, so ids stay gap-free and are never handed out twice.
func (r *UserRepository) CreateWithApplicationID(ctx context.Context, user *models.User, counter string, format func(int64) string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		seq, err := nextValue(ctx, tx, counter)
		if err != nil {
			return err
		}
		user.ApplicationID = format(seq)

		sql, args, err := r.sb.Insert("users").
			Columns("application_id", "email", "full_name", "password").
			Values(user.ApplicationID, user.Email, user.FullName, user.Password).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create user query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, emailUniqueConstraint) {
				return apperrors.NewConflictError("User with this email already exists")
			}
			logger.Error().Err(err).Str("email", user.Email).Msg("Error inserting user")
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	var u models.User
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.ApplicationID, &u.Email, &u.FullName, &u.Password, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return &u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// SetRefreshToken stores the single active refresh token; nil clears it
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID int64, token *string) error {
	sql, args, err := r.sb.Update("users").
		Set("refresh_token", token).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build refresh token query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error storing refresh token")
		return fmt.Errorf("error storing refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
