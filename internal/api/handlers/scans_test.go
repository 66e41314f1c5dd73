package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudmegaphone/backend/internal/models"
)

func multipartScanRequest(t *testing.T, docType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", "scan.jpg")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	if docType != "" {
		require.NoError(t, w.WriteField("document_type", docType))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/extract", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestReadUploadAcceptsSmallFile(t *testing.T) {
	h := &ScanHandler{}
	rec := httptest.NewRecorder()

	data, docType, _, ok := h.readUpload(rec, multipartScanRequest(t, models.DocTypeCIN, []byte("tiny image bytes")))
	require.True(t, ok)
	assert.Equal(t, []byte("tiny image bytes"), data)
	assert.Equal(t, models.DocTypeCIN, docType)
}

func TestReadUploadRejectsOversizedFile(t *testing.T) {
	h := &ScanHandler{}
	rec := httptest.NewRecorder()

	_, _, _, ok := h.readUpload(rec, multipartScanRequest(t, models.DocTypeCIN, bytes.Repeat([]byte{'a'}, maxScanUpload+1)))
	assert.False(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestReadUploadRejectsUnknownDocumentType(t *testing.T) {
	h := &ScanHandler{}
	rec := httptest.NewRecorder()

	_, _, _, ok := h.readUpload(rec, multipartScanRequest(t, "permis_de_conduire", []byte("x")))
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
