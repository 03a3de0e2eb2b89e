package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/nitn/phd-admission/internal/app/repositories/memory"
	"github.com/nitn/phd-admission/internal/pkg/auth"
	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/pdfassembly"
	"github.com/stretchr/testify/require"
)

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

// fakeStore hands out HTTPS URLs and records deletions
type fakeStore struct {
	mu      sync.Mutex
	n       int
	deleted []string
	err     error
}

func (f *fakeStore) Upload(_ context.Context, _ string, opts filestorage.UploadOptions) (*filestorage.StoredObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	id := fmt.Sprintf("%s/file%d", opts.Folder, f.n)
	return &filestorage.StoredObject{URL: "https://cdn.example.org/" + id, PublicID: id}, nil
}

func (f *fakeStore) Delete(_ context.Context, publicID string, _ filestorage.ResourceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

// fakeAssembler records what it was asked to print
type fakeAssembler struct {
	summary pdfassembly.Summary
	sources []pdfassembly.Source
}

func (f *fakeAssembler) Assemble(_ context.Context, s pdfassembly.Summary, sources []pdfassembly.Source) (*pdfassembly.Result, error) {
	f.summary, f.sources = s, sources
	return &pdfassembly.Result{PDF: []byte("%PDF-1.7 fake")}, nil
}

type testEnv struct {
	stores    *memory.Stores
	store     *fakeStore
	temp      *filestorage.TempDir
	assembler *fakeAssembler
	services  *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	temp, err := filestorage.NewTempDir(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		stores:    memory.NewStores(),
		store:     &fakeStore{},
		temp:      temp,
		assembler: &fakeAssembler{},
	}
	env.services = NewServices(Stores{
		Users:      env.stores.Users,
		Personal:   env.stores.Personal,
		Academic:   env.stores.Academic,
		Payment:    env.stores.Payment,
		Enclosures: env.stores.Enclosures,
	}, Dependencies{
		JWTService: auth.NewJWTService(auth.JWTConfig{
			AccessSecret:    "access-secret",
			RefreshSecret:   "refresh-secret",
			AccessTokenExp:  time.Hour,
			RefreshTokenExp: 240 * time.Hour,
			TokenIssuer:     "phd-admission",
		}),
		Store:         env.store,
		TempDir:       temp,
		Assembler:     env.assembler,
		Folder:        "phd_admission",
		Limits:        UploadLimits{MaxImageBytes: 2 << 20, MaxDocumentBytes: 5 << 20},
		ApplicationID: ApplicationIDFormat{Prefix: "NITN/Phd", Width: 6, Counter: "userid"},
	})
	return env
}

func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}
