package captcha

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifyServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "sekret", r.FormValue("secret"))
		assert.NotEmpty(t, r.FormValue("response"))
		fmt.Fprint(w, response)
	}))
}

func TestVerifySuccess(t *testing.T) {
	srv := verifyServer(t, `{"success":true,"score":0.9,"action":"submit"}`)
	defer srv.Close()

	v := NewVerifier("sekret", "submit", srv.URL, 0.5)
	res, err := v.Verify(context.Background(), "tok", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.InDelta(t, 0.9, res.Score, 0.001)
}

func TestVerifyLowScore(t *testing.T) {
	srv := verifyServer(t, `{"success":true,"score":0.3,"action":"submit"}`)
	defer srv.Close()

	v := NewVerifier("sekret", "submit", srv.URL, 0.5)
	res, err := v.Verify(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "score below threshold", res.Reason)
}

func TestVerifyActionMismatch(t *testing.T) {
	srv := verifyServer(t, `{"success":true,"score":0.9,"action":"login"}`)
	defer srv.Close()

	v := NewVerifier("sekret", "submit", srv.URL, 0.5)
	res, err := v.Verify(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "action mismatch")
}

func TestVerifyProviderFailure(t *testing.T) {
	srv := verifyServer(t, `{"success":false,"error-codes":["invalid-input-response"]}`)
	defer srv.Close()

	v := NewVerifier("sekret", "submit", srv.URL, 0.5)
	res, err := v.Verify(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "invalid-input-response")
}
