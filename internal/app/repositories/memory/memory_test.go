package memory

import (
	"context"
	"testing"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormStore_PatchFollowsJSONBSet(t *testing.T) {
	ctx := context.Background()
	store := NewStores().Personal

	doc := &models.PersonalDetails{FirstName: "Alice"}
	doc.UserID = 1
	require.NoError(t, store.Create(ctx, doc))

	require.NoError(t, store.Patch(ctx, 1, []string{"dd_url"}, "https://cdn.example.org/dd.pdf"))
	// parent is absent, so nothing is written
	require.NoError(t, store.Patch(ctx, 1, []string{"transaction_details", "transaction_screenshot_url"}, "https://x"))

	got, err := store.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/dd.pdf", got.DDURL)
	assert.Nil(t, got.TransactionDetails)
	assert.Equal(t, "Alice", got.FirstName)

	assert.ErrorIs(t, store.Patch(ctx, 2, []string{"dd_url"}, "x"), apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, store.Create(ctx, doc), apperrors.ErrConflict)
}

func TestFormStore_PatchArrayElement(t *testing.T) {
	ctx := context.Background()
	store := NewStores().Academic

	doc := &models.AcademicDetails{Qualifications: []models.Qualification{{DegreeName: "B.Tech."}}}
	doc.UserID = 3
	require.NoError(t, store.Create(ctx, doc))

	path, _ := models.DocumentPath(models.DocumentQualification, 0)
	require.NoError(t, store.Patch(ctx, 3, path, "https://cdn.example.org/q.pdf"))

	got, err := store.GetByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/q.pdf", got.Qualifications[0].DocumentURL)
	assert.Equal(t, "B.Tech.", got.Qualifications[0].DegreeName)
}
