package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// MsgApplicationSubmitted is returned for writes after submission
const MsgApplicationSubmitted = "Application already submitted"

type documentPtr[T any] interface {
	*T
	models.Document
}

type defaulter interface {
	ApplyDefaults()
}

// submissionGuard rejects writes once the application is submitted
type submissionGuard struct {
	personal PersonalStore
}

func (g *submissionGuard) ensureEditable(ctx context.Context, userID int64) error {
	if g == nil || g.personal == nil {
		return nil
	}
	p, err := g.personal.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil
		}
		return err
	}
	if p.Status == models.StatusSubmitted {
		return apperrors.NewCustomError(apperrors.ErrApplicationSubmitted, MsgApplicationSubmitted)
	}
	return nil
}

// formService implements create, get and update for one form type.
// name is used in log lines and conflict is the message of a second create.
type formService[T any, P documentPtr[T]] struct {
	store    FormStore[P]
	guard    *submissionGuard
	name     string
	conflict string

	// reset clears server-managed fields of a new document
	reset func(doc P)
	// restore copies server-managed fields from the stored document
	restore func(stored, merged P)

	logger zerolog.Logger
}

func prepare(doc interface{}) error {
	if d, ok := doc.(defaulter); ok {
		d.ApplyDefaults()
	}
	return validation.Struct(doc)
}

// Create stores the first version of the caller's form
func (s *formService[T, P]) Create(ctx context.Context, userID int64, doc P) (P, error) {
	if err := s.guard.ensureEditable(ctx, userID); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError(s.conflict)
	}

	*doc.Metadata() = models.Meta{UserID: userID}
	if s.reset != nil {
		s.reset(doc)
	}
	if err := prepare(doc); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Msgf("%s created", s.name)
	return doc, nil
}

// Get returns the caller's form
func (s *formService[T, P]) Get(ctx context.Context, userID int64) (P, error) {
	return s.store.GetByUserID(ctx, userID)
}

// Update merges the JSON body onto the stored form, revalidates and replaces it.
// It never creates a record.
func (s *formService[T, P]) Update(ctx context.Context, userID int64, body []byte) (P, error) {
	if err := s.guard.ensureEditable(ctx, userID); err != nil {
		return nil, err
	}

	stored, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged, err := mergeJSON[T, P](stored, body)
	if err != nil {
		return nil, err
	}
	*merged.Metadata() = *stored.Metadata()
	if s.restore != nil {
		s.restore(stored, merged)
	}
	if err := prepare(merged); err != nil {
		return nil, err
	}

	if err := s.store.Replace(ctx, merged); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Msgf("%s updated", s.name)
	return merged, nil
}

// mergeJSON decodes body over a deep copy of stored. Every top-level field
// present in body replaces the stored value whole, so arrays and nested
// objects never keep elements or keys of the previous version.
func mergeJSON[T any, P documentPtr[T]](stored P, body []byte) (P, error) {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return nil, apperrors.NewBadRequestError("Invalid request body: " + err.Error())
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}
	merged := P(new(T))
	if err := json.Unmarshal(raw, merged); err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}

	doc := reflect.ValueOf(merged).Elem()
	for key := range present {
		if field, ok := jsonField(doc, key); ok {
			field.Set(reflect.Zero(field.Type()))
		}
	}
	if err := json.Unmarshal(body, merged); err != nil {
		return nil, apperrors.NewBadRequestError("Invalid request body: " + err.Error())
	}
	return merged, nil
}

// jsonField finds the field encoding/json decodes key into, looking through
// embedded structs the same way the decoder does
func jsonField(v reflect.Value, key string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			if f, ok := jsonField(v.Field(i), key); ok {
				return f, true
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if strings.EqualFold(name, key) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
