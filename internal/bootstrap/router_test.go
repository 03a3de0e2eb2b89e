package bootstrap

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/repositories/memory"
	appServices "github.com/nitn/phd-admission/internal/app/services"
	"github.com/nitn/phd-admission/internal/config"
	"github.com/nitn/phd-admission/internal/pkg/pdfassembly"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router  *gin.Engine
	tempDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, nil)
}

func newTestAppWith(t *testing.T, configure func(cfg *config.Config)) *testApp {
	t.Helper()
	uploads := t.TempDir()
	files := httptest.NewServer(http.FileServer(http.Dir(uploads)))
	t.Cleanup(files.Close)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.JWT.AccessTokenSecret = "access-secret"
	cfg.JWT.RefreshTokenSecret = "refresh-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.RefreshTokenExpiration = "240h"
	cfg.JWT.Issuer = "phd-admission"
	cfg.Storage.Driver = config.StorageDriverLocal
	cfg.Storage.LocalPath = uploads
	cfg.Storage.LocalURL = files.URL
	cfg.Storage.Folder = "phd_admission"
	cfg.Uploads.TempDir = t.TempDir()
	cfg.Uploads.MaxImageBytes = 2 << 20
	cfg.Uploads.MaxDocumentBytes = 5 << 20
	cfg.Uploads.TempMaxAge = "1h"
	cfg.Application.IDPrefix = "NITN/Phd"
	cfg.Application.IDWidth = 6
	cfg.Application.CounterName = "userid"
	cfg.PDF.FetchTimeout = "5s"
	if configure != nil {
		configure(cfg)
	}

	stores := memory.NewStores()
	deps, err := BuildWithStores(cfg, appServices.Stores{
		Users:      stores.Users,
		Personal:   stores.Personal,
		Academic:   stores.Academic,
		Payment:    stores.Payment,
		Enclosures: stores.Enclosures,
	}, zerolog.Nop())
	require.NoError(t, err)

	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	return &testApp{router: router, tempDir: cfg.Uploads.TempDir}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) upload(t *testing.T, path, token, field, filename string, content []byte, extra map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  []string          `json:"fields"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

type session struct {
	ApplicationID string
	AccessToken   string
	RefreshToken  string
}

func (a *testApp) register(t *testing.T, email string) session {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "fullName": "Test User", "password": "Secret#123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		User struct {
			ApplicationID string `json:"applicationId"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	return session{ApplicationID: data.User.ApplicationID, AccessToken: data.AccessToken, RefreshToken: data.RefreshToken}
}

func personalBody() map[string]interface{} {
	address := map[string]interface{}{
		"street": "1 Main Road", "city": "Delhi", "state": "Delhi", "pincode": "110040",
	}
	return map[string]interface{}{
		"first_name":        "Alice",
		"last_name":         "Doe",
		"date_of_birth":     time.Now().AddDate(-25, 0, 0).Format("2006-01-02"),
		"gender":            "Female",
		"nationality":       "Indian",
		"category":          "General",
		"religion":          "None",
		"father_name":       "Bob Doe",
		"mother_name":       "Carol Doe",
		"marital_status":    "Single",
		"email":             "alice@x.com",
		"phone":             "9876543210",
		"department":        "Computer Science and Engineering",
		"mode_of_phd":       "Full Time",
		"current_address":   address,
		"permanent_address": address,
	}
}

func academicBody() map[string]interface{} {
	return map[string]interface{}{
		"research_interest": map[string]interface{}{"branch": "CSE", "area": "Distributed systems"},
		"qualifications": []map[string]interface{}{{
			"standard": "PG", "degree_name": "M.Tech.", "university": "NIT", "year_of_completion": 2022,
			"marks_type": "CGPA", "marks_obtained": 8.7, "program_duration_months": 24,
		}},
		"publications": []map[string]interface{}{{
			"paper_title": "On queues", "document_url": "http://127.0.0.1:1/missing.pdf",
		}},
	}
}

func samplePDF(t *testing.T) []byte {
	t.Helper()
	pdf, err := pdfassembly.RenderPlaceholder("sample", "fixture")
	require.NoError(t, err)
	return pdf
}

func TestRouter_RegistrationAssignsSequentialIDs(t *testing.T) {
	app := newTestApp(t)

	alice := app.register(t, "alice@x.com")
	bob := app.register(t, "bob@x.com")
	assert.Equal(t, "NITN/Phd/000001", alice.ApplicationID)
	assert.Equal(t, "NITN/Phd/000002", bob.ApplicationID)

	w := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ALICE@x.com", "fullName": "Again", "password": "Secret#123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_LoginSetsCookies(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice@x.com")

	w := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "Secret#123"})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, "accessToken")
	require.Contains(t, cookies, "refreshToken")
	assert.True(t, cookies["accessToken"].HttpOnly)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "Wrong#1234"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "Secret#123"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User does not exist", decode(t, w).Message)
}

func TestRouter_RefreshAfterLogoutIsStale(t *testing.T) {
	app := newTestApp(t)
	s := app.register(t, "alice@x.com")

	w := app.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": s.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/logout", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": s.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_003", decode(t, w).Code)
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/api/personal/get", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodGet, "/api/personal/get", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_002", decode(t, w).Code)
}

func TestRouter_PersonalMissingEmailListsFields(t *testing.T) {
	app := newTestApp(t)
	s := app.register(t, "alice@x.com")

	body := personalBody()
	delete(body, "email")
	delete(body, "phone")
	w := app.do(t, http.MethodPost, "/api/personal/create", s.AccessToken, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := decode(t, w)
	assert.False(t, e.Success)
	assert.Contains(t, e.Fields, "email")
	assert.Contains(t, e.Fields, "phone")
}

func TestRouter_FormLifecycle(t *testing.T) {
	app := newTestApp(t)
	s := app.register(t, "alice@x.com")

	w := app.do(t, http.MethodPut, "/api/payment/update", s.AccessToken, map[string]string{"issued_bank": "SBI"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Payment details not found", decode(t, w).Message)

	w = app.do(t, http.MethodPost, "/api/personal/create", s.AccessToken, personalBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/personal/create", s.AccessToken, personalBody())
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodPut, "/api/personal/update", s.AccessToken, map[string]string{"religion": "Hindu"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var personal map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &personal))
	assert.Equal(t, "Hindu", personal["religion"])
	assert.Equal(t, "Alice", personal["first_name"])

	w = app.do(t, http.MethodGet, "/api/enclosures/get", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/application/status", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		NextStep string `json:"nextStep"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &status))
	assert.Equal(t, "academic", status.NextStep)
}

func TestRouter_OversizedUploadLeavesNoTempFiles(t *testing.T) {
	app := newTestApp(t)
	s := app.register(t, "alice@x.com")

	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 6<<20)...)
	w := app.upload(t, "/api/personal/upload-demand-draft", s.AccessToken, "document", "dd.pdf", big, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries, err := os.ReadDir(app.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	w = app.upload(t, "/api/personal/upload-demand-draft", s.AccessToken, "document", "dd.txt", []byte("hello"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_AcademicUploadAndPrint(t *testing.T) {
	app := newTestApp(t)
	s := app.register(t, "alice@x.com")

	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/personal/create", s.AccessToken, personalBody()).Code)
	w := app.do(t, http.MethodPost, "/api/academic/create", s.AccessToken, academicBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.upload(t, "/api/academic/upload-document", s.AccessToken, "document", "degree.pdf", samplePDF(t),
		map[string]string{"documentType": "thesis", "index": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid document type", decode(t, w).Message)

	w = app.upload(t, "/api/academic/upload-document", s.AccessToken, "document", "degree.pdf", samplePDF(t),
		map[string]string{"documentType": "qualification", "index": "3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.upload(t, "/api/academic/upload-document", s.AccessToken, "document", "degree.pdf", samplePDF(t),
		map[string]string{"documentType": "qualification", "index": "0"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/academic/get", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var academic struct {
		Qualifications []struct {
			DocumentURL string `json:"document_url"`
		} `json:"qualifications"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &academic))
	require.Len(t, academic.Qualifications, 1)
	assert.True(t, strings.HasPrefix(academic.Qualifications[0].DocumentURL, "http"))

	w = app.do(t, http.MethodGet, "/api/application/print", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "application-NITN-Phd-000001.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	pages, err := pdfassembly.NewAssembler(nil).PageCount(w.Body.Bytes())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pages, 3)
}

func TestRouter_SubmitLocksForms(t *testing.T) {
	app := newTestApp(t)
	s := app.register(t, "alice@x.com")
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/personal/create", s.AccessToken, personalBody()).Code)

	w := app.do(t, http.MethodPost, "/api/application/submit", s.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := decode(t, w)
	assert.Equal(t, "VAL_003", e.Code)
	assert.ElementsMatch(t, []string{"academic", "enclosures", "payment"}, e.Fields)
}

func TestRouter_MiscRoutes(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

	w = app.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode(t, w).Message)

	w = app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "phd_admission_http_requests_total")
}

func TestRouter_AuthRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	app := newTestAppWith(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 1
		cfg.RateLimit.Burst = 2
	})

	login := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@x.com","password":"Secret#123"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)
		return w.Code
	}

	assert.NotEqual(t, http.StatusTooManyRequests, login("10.0.0.1"))
	assert.NotEqual(t, http.StatusTooManyRequests, login("10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.3"))
}

func TestRouter_TrustedProxyForwardsClientIP(t *testing.T) {
	app := newTestAppWith(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 1
		cfg.RateLimit.Burst = 1
		cfg.Server.TrustedProxies = []string{"192.0.2.0/24"}
	})

	login := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)
		return w.Code
	}

	assert.NotEqual(t, http.StatusTooManyRequests, login("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.1"))
	assert.NotEqual(t, http.StatusTooManyRequests, login("10.0.0.2"))
}
