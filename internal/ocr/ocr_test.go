package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudmegaphone/backend/internal/config"
)

func TestDetectKeyType(t *testing.T) {
	tests := []struct {
		key  string
		want KeyType
	}{
		{"helloworld", KeyTypeFree},
		{"K81234567888957", KeyTypeFree},
		{"K123", KeyTypeFree},
		{"PKX9f2a71c88b41", KeyTypePro},
		{"f47ac10b58cc4372a567", KeyTypePro},
		{"K12AB34", KeyTypePro}, // letters after K means not a free key
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectKeyType(tt.key), "key %q", tt.key)
	}
}

func TestOCRSpaceRecognize(t *testing.T) {
	var gotAPIKey, gotLanguage, gotEngine string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotAPIKey = r.FormValue("apikey")
		gotLanguage = r.FormValue("language")
		gotEngine = r.FormValue("OCREngine")
		assert.NotEmpty(t, r.FormValue("base64Image"))

		json.NewEncoder(w).Encode(map[string]any{
			"OCRExitCode":           1,
			"IsErroredOnProcessing": false,
			"ParsedResults":         []map[string]any{{"ParsedText": "ROYAUME DU MAROC\nP=0425\n", "FileParseExitCode": 1}},
		})
	}))
	defer srv.Close()

	p := NewOCRSpaceProvider("K81234567888957", "fre", 2, WithEndpoint(srv.URL))
	text, err := p.Recognize(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "ROYAUME DU MAROC\nP=0425", text)
	assert.Equal(t, "K81234567888957", gotAPIKey)
	assert.Equal(t, "fre", gotLanguage)
	assert.Equal(t, "2", gotEngine)
}

func TestOCRSpaceProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ErrorMessage is an array of strings on this provider.
		fmt.Fprint(w, `{"OCRExitCode":99,"IsErroredOnProcessing":true,"ErrorMessage":["Unable to recognize the file type","E216"]}`)
	}))
	defer srv.Close()

	p := NewOCRSpaceProvider("helloworld", "fre", 2, WithEndpoint(srv.URL))
	_, err := p.Recognize(context.Background(), []byte{1}, "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "Unable to recognize the file type")
}

func TestOCRSpaceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewOCRSpaceProvider("helloworld", "fre", 2, WithEndpoint(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := p.Recognize(context.Background(), []byte{1}, "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

type fakeProvider struct {
	name  string
	calls int
	fail  int // fail this many calls before succeeding
	err   error
	text  string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	f.calls++
	if f.calls <= f.fail {
		return "", f.err
	}
	return f.text, nil
}

func newTestGateway(primary, fallback string, maxRetries int) *Gateway {
	return NewGateway(config.OCRConfig{
		DefaultProvider:  primary,
		FallbackProvider: fallback,
		MaxRetries:       maxRetries,
	})
}

func TestGatewayRetriesTransientErrors(t *testing.T) {
	p := &fakeProvider{name: "ocrspace", fail: 2, err: errors.New("connection reset"), text: "hello"}
	g := newTestGateway("ocrspace", "", 2)
	g.Register(p)

	text, err := g.Recognize(context.Background(), []byte{1}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 3, p.calls)
}

func TestGatewayDoesNotRetryProviderErrors(t *testing.T) {
	p := &fakeProvider{name: "ocrspace", fail: 10, err: fmt.Errorf("%w: bad file", ErrProvider)}
	g := newTestGateway("ocrspace", "", 3)
	g.Register(p)

	_, err := g.Recognize(context.Background(), []byte{1}, "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Equal(t, 1, p.calls)
}

func TestGatewayFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "ocrspace", fail: 10, err: errors.New("down")}
	fallback := &fakeProvider{name: "openai", text: "fallback text"}
	g := newTestGateway("ocrspace", "openai", 0)
	g.Register(primary)
	g.Register(fallback)

	text, err := g.Recognize(context.Background(), []byte{1}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "fallback text", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGatewayUnknownProvider(t *testing.T) {
	g := NewGateway(config.OCRConfig{DefaultProvider: "nope"})
	_, err := g.Recognize(context.Background(), []byte{1}, "image/jpeg")
	assert.Error(t, err)
}
