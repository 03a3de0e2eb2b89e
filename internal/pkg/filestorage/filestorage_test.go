package filestorage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempDir_Stage(t *testing.T) {
	tmp, err := NewTempDir(t.TempDir())
	require.NoError(t, err)

	path, err := tmp.Stage(strings.NewReader("%PDF-1.4"), "Degree.PDF", 1024)
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))
	assert.Equal(t, tmp.Path(), filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestTempDir_StageTooLargeLeavesNothing(t *testing.T) {
	tmp, err := NewTempDir(t.TempDir())
	require.NoError(t, err)

	_, err = tmp.Stage(bytes.NewReader(make([]byte, 2048)), "big.pdf", 1024)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(tmp.Path())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTempDir_Sweep(t *testing.T) {
	dir := t.TempDir()
	tmp, err := NewTempDir(dir)
	require.NoError(t, err)

	now := time.Now()
	old := filepath.Join(dir, "old.pdf")
	fresh := filepath.Join(dir, "fresh.pdf")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(old, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	removed, err := tmp.Sweep(time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "photo.PNG")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o600))

	obj, err := store.Upload(context.Background(), src, UploadOptions{Folder: "phd_admission/photos", ResourceType: ResourceImage})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.URL, "http://localhost:8080/uploads/phd_admission/photos/"))
	assert.True(t, strings.HasSuffix(obj.PublicID, ".png"))
	assert.FileExists(t, store.GetFullPath(obj.PublicID))
	assert.FileExists(t, src)

	require.NoError(t, store.Delete(context.Background(), obj.PublicID, ResourceImage))
	assert.NoFileExists(t, store.GetFullPath(obj.PublicID))
	assert.NoError(t, store.Delete(context.Background(), obj.PublicID, ResourceImage))
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base, "http://localhost/uploads")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "missing", UploadOptions{Folder: "../etc"})
	assert.Error(t, err)

	full := store.GetFullPath("../../etc/passwd")
	assert.True(t, strings.HasPrefix(full, base))
	assert.Equal(t, "", store.GetFullPath("/"))
}

type fakeCloudinary struct {
	params  uploader.UploadParams
	result  *uploader.UploadResult
	err     error
	destroy uploader.DestroyParams
}

func (f *fakeCloudinary) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	return f.result, f.err
}

func (f *fakeCloudinary) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroy = params
	return &uploader.DestroyResult{Result: "not found"}, nil
}

func TestCloudinaryStore_Upload(t *testing.T) {
	fake := &fakeCloudinary{result: &uploader.UploadResult{
		PublicID: "phd_admission/abc",
		URL:      "http://res.cloudinary.com/demo/raw/upload/abc.pdf",
	}}
	store := newCloudinaryStore(fake)

	obj, err := store.Upload(context.Background(), "/tmp/x.pdf", UploadOptions{Folder: "phd_admission", ResourceType: ResourceRaw})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/raw/upload/abc.pdf", obj.URL)
	assert.Equal(t, "phd_admission/abc", obj.PublicID)
	assert.Equal(t, "raw", fake.params.ResourceType)
	assert.Equal(t, "phd_admission", fake.params.Folder)

	require.NoError(t, store.Delete(context.Background(), obj.PublicID, ResourceRaw))
	assert.Equal(t, "phd_admission/abc", fake.destroy.PublicID)
}

func TestCloudinaryStore_UploadErrors(t *testing.T) {
	store := newCloudinaryStore(&fakeCloudinary{err: errors.New("network down")})
	_, err := store.Upload(context.Background(), "/tmp/x.pdf", UploadOptions{})
	assert.ErrorContains(t, err, "network down")

	store = newCloudinaryStore(&fakeCloudinary{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}})
	_, err = store.Upload(context.Background(), "/tmp/x.png", UploadOptions{ResourceType: ResourceImage})
	assert.ErrorContains(t, err, "Invalid image file")
}
