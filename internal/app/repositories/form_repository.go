package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/db"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/dberrors"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/rs/zerolog"
)

// documentPtr constrains FormRepository to pointers of form models
type documentPtr[T any] interface {
	*T
	models.Document
}

// FormSpec names the table of a form and its client-facing messages
type FormSpec struct {
	Table           string
	NotFoundMessage string
	ConflictMessage string
}

// FormRepository stores one JSON document per applicant in Table
type FormRepository[T any, P documentPtr[T]] struct {
	db     db.Querier
	sb     squirrel.StatementBuilderType
	spec   FormSpec
	logger zerolog.Logger
}

// NewFormRepository creates a repository for one form table
func NewFormRepository[T any, P documentPtr[T]](q db.Querier, spec FormSpec) *FormRepository[T, P] {
	return &FormRepository[T, P]{
		db:     q,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		spec:   spec,
		logger: logger.Component("repo." + spec.Table),
	}
}

func (r *FormRepository[T, P]) uniqueConstraint() string {
	return r.spec.Table + "_user_id_key"
}

// Create inserts doc for its owner; a second record for the same owner is a conflict
func (r *FormRepository[T, P]) Create(ctx context.Context, doc P) error {
	meta := doc.Metadata()
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", r.spec.Table, err)
	}

	sql, args, err := r.sb.Insert(r.spec.Table).
		Columns("user_id", "document").
		Values(meta.UserID, body).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&meta.ID, &meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, r.uniqueConstraint()) {
			return apperrors.NewConflictError(r.spec.ConflictMessage)
		}
		r.logger.Error().Err(err).Int64("userID", meta.UserID).Msg("Error inserting document")
		return fmt.Errorf("error creating %s record: %w", r.spec.Table, err)
	}
	return nil
}

// GetByUserID loads the record owned by userID
func (r *FormRepository[T, P]) GetByUserID(ctx context.Context, userID int64) (P, error) {
	sql, args, err := r.sb.Select("id", "user_id", "document", "created_at", "updated_at").
		From(r.spec.Table).
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var (
		meta models.Meta
		body []byte
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(&meta.ID, &meta.UserID, &body, &meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(r.spec.NotFoundMessage)
		}
		r.logger.Error().Err(err).Int64("userID", userID).Msg("Error loading document")
		return nil, fmt.Errorf("error retrieving %s record: %w", r.spec.Table, err)
	}

	doc := P(new(T))
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", r.spec.Table, err)
	}
	*doc.Metadata() = meta
	return doc, nil
}

// Exists reports whether userID owns a record
func (r *FormRepository[T, P]) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE user_id = $1)`, r.spec.Table)
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking %s record: %w", r.spec.Table, err)
	}
	return exists, nil
}

// Replace overwrites the stored document of doc's owner; it never inserts
func (r *FormRepository[T, P]) Replace(ctx context.Context, doc P) error {
	meta := doc.Metadata()
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", r.spec.Table, err)
	}

	sql, args, err := r.sb.Update(r.spec.Table).
		Set("document", body).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": meta.UserID}).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&meta.ID, &meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError(r.spec.NotFoundMessage)
		}
		r.logger.Error().Err(err).Int64("userID", meta.UserID).Msg("Error replacing document")
		return fmt.Errorf("error updating %s record: %w", r.spec.Table, err)
	}
	return nil
}

// Patch writes value at path inside the stored document.
// Callers check the path against the schema first; missing object keys are created.
func (r *FormRepository[T, P]) Patch(ctx context.Context, userID int64, path []string, value interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("empty patch path")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode patch value: %w", err)
	}

	sql, args, err := r.sb.Update(r.spec.Table).
		Set("document", squirrel.Expr("jsonb_set(document, ?::text[], ?::jsonb, true)", path, raw)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build patch query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		r.logger.Error().Err(err).Int64("userID", userID).Strs("path", path).Msg("Error patching document")
		return fmt.Errorf("error patching %s record: %w", r.spec.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(r.spec.NotFoundMessage)
	}
	return nil
}
