package contract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sudmegaphone/backend/internal/retry"
)

// ImageFetcher retrieves the barcode image referenced by a client record.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

type HTTPImageFetcher struct {
	client      *http.Client
	maxAttempts int
}

func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{
		client:      &http.Client{Timeout: 10 * time.Second},
		maxAttempts: 2,
	}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	var data []byte
	var contentType string

	err := retry.Do(ctx, f.maxAttempts, 300*time.Millisecond, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create image request: %w", err))
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch image: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return fmt.Errorf("fetch image: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return fmt.Errorf("read image body: %w", err)
		}

		data = body
		contentType = resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// supportedImage reports whether the fetched bytes can be embedded, based
// on content type with an extension fallback.
func supportedImage(contentType, url string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "png") || strings.Contains(ct, "jpeg") || strings.Contains(ct, "jpg") {
		return true
	}
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg")
}
