// Package memory provides in-process implementations of the repositories.
// They mirror the Postgres semantics closely enough for service and handler tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
)

type documentPtr[T any] interface {
	*T
	models.Document
}

// FormStore keeps one JSON document per user
type FormStore[T any, P documentPtr[T]] struct {
	mu     sync.Mutex
	spec   repositories.FormSpec
	docs   map[int64][]byte
	meta   map[int64]models.Meta
	nextID int64
	now    func() time.Time
}

// NewFormStore creates an empty store reporting errors with spec's messages
func NewFormStore[T any, P documentPtr[T]](spec repositories.FormSpec) *FormStore[T, P] {
	return &FormStore[T, P]{
		spec: spec,
		docs: map[int64][]byte{},
		meta: map[int64]models.Meta{},
		now:  time.Now,
	}
}

// Create inserts doc; a second document for the same user is a conflict
func (s *FormStore[T, P]) Create(_ context.Context, doc P) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := doc.Metadata()
	if _, ok := s.docs[meta.UserID]; ok {
		return apperrors.NewConflictError(s.spec.ConflictMessage)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.nextID++
	now := s.now()
	meta.ID, meta.CreatedAt, meta.UpdatedAt = s.nextID, now, now
	s.docs[meta.UserID] = body
	s.meta[meta.UserID] = *meta
	return nil
}

// GetByUserID returns a copy of the user's document
func (s *FormStore[T, P]) GetByUserID(_ context.Context, userID int64) (P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, ok := s.docs[userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(s.spec.NotFoundMessage)
	}
	doc := P(new(T))
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, err
	}
	*doc.Metadata() = s.meta[userID]
	return doc, nil
}

// Exists reports whether the user has a document
func (s *FormStore[T, P]) Exists(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[userID]
	return ok, nil
}

// Replace overwrites an existing document
func (s *FormStore[T, P]) Replace(_ context.Context, doc P) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := doc.Metadata()
	stored, ok := s.meta[meta.UserID]
	if !ok {
		return apperrors.NewResourceNotFoundError(s.spec.NotFoundMessage)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	stored.UpdatedAt = s.now()
	*meta = stored
	s.docs[meta.UserID] = body
	s.meta[meta.UserID] = stored
	return nil
}

// Patch sets value at path with the semantics of jsonb_set(..., create_missing => true):
// only the last path element may be created.
func (s *FormStore[T, P]) Patch(_ context.Context, userID int64, path []string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, ok := s.docs[userID]
	if !ok {
		return apperrors.NewResourceNotFoundError(s.spec.NotFoundMessage)
	}
	if len(path) == 0 {
		return fmt.Errorf("empty patch path")
	}

	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}

	setPath(root, path, v)
	if body, err = json.Marshal(root); err != nil {
		return err
	}

	meta := s.meta[userID]
	meta.UpdatedAt = s.now()
	s.meta[userID] = meta
	s.docs[userID] = body
	return nil
}

func setPath(node interface{}, path []string, value interface{}) {
	last := len(path) == 1
	switch n := node.(type) {
	case map[string]interface{}:
		if last {
			n[path[0]] = value
			return
		}
		if child, ok := n[path[0]]; ok {
			setPath(child, path[1:], value)
		}
	case []interface{}:
		i, err := strconv.Atoi(path[0])
		if err != nil || i < 0 || i >= len(n) {
			return
		}
		if last {
			n[i] = value
			return
		}
		setPath(n[i], path[1:], value)
	}
}

// UserStore keeps accounts and named counters in memory
type UserStore struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	counters map[string]int64
	nextID   int64
}

// NewUserStore creates an empty UserStore
func NewUserStore() *UserStore {
	return &UserStore{
		users:    map[int64]*models.User{},
		counters: map[string]int64{},
	}
}

// CreateWithApplicationID mints the next code and inserts user; a duplicate email consumes nothing
func (s *UserStore) CreateWithApplicationID(_ context.Context, user *models.User, counter string, format func(int64) string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return apperrors.NewConflictError("User with this email already exists")
		}
	}

	s.counters[counter]++
	s.nextID++
	now := time.Now()
	user.ID = s.nextID
	user.ApplicationID = format(s.counters[counter])
	user.CreatedAt, user.UpdatedAt = now, now

	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *UserStore) copyOf(u *models.User) *models.User {
	c := *u
	if u.RefreshToken != nil {
		t := *u.RefreshToken
		c.RefreshToken = &t
	}
	return &c
}

// GetByEmail finds a user by email
func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return s.copyOf(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// GetByID finds a user by id
func (s *UserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return s.copyOf(u), nil
}

// SetRefreshToken stores or clears the active refresh token
func (s *UserStore) SetRefreshToken(_ context.Context, userID int64, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if token == nil {
		u.RefreshToken = nil
		return nil
	}
	t := *token
	u.RefreshToken = &t
	return nil
}

// Delete removes a user
func (s *UserStore) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Counter returns the current value of a counter
func (s *UserStore) Counter(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}
