package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPrintFilename(t *testing.T) {
	assert.Equal(t, "application-NITN-Phd-000042.pdf", printFilename("NITN/Phd/000042"))
	assert.Equal(t, "application.pdf", printFilename(""))
}

func TestFormFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("document", "a.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	fh, err := formFile(c, "document")
	require.NoError(t, err)
	require.NotNil(t, fh)
	assert.Equal(t, "a.pdf", fh.Filename)

	fh, err = formFile(c, "photo")
	assert.NoError(t, err)
	assert.Nil(t, fh)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	c.Request.Header.Set("Content-Type", "application/json")
	fh, err = formFile(c, "document")
	assert.NoError(t, err)
	assert.Nil(t, fh)
}
