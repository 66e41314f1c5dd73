package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	freeEndpoint = "https://api.ocr.space/parse/image"
	proEndpoint  = "https://apipro1.ocr.space/parse/image"
)

type OCRSpaceProvider struct {
	apiKey     string
	language   string
	engine     int
	endpoint   string
	httpClient *http.Client
}

type OCRSpaceOption func(*OCRSpaceProvider)

// WithEndpoint overrides host selection, used by tests.
func WithEndpoint(url string) OCRSpaceOption {
	return func(p *OCRSpaceProvider) { p.endpoint = url }
}

func WithTimeout(d time.Duration) OCRSpaceOption {
	return func(p *OCRSpaceProvider) { p.httpClient.Timeout = d }
}

func NewOCRSpaceProvider(apiKey, language string, engine int, opts ...OCRSpaceOption) *OCRSpaceProvider {
	endpoint := freeEndpoint
	if DetectKeyType(apiKey) == KeyTypePro {
		endpoint = proEndpoint
	}

	p := &OCRSpaceProvider{
		apiKey:     apiKey,
		language:   language,
		engine:     engine,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OCRSpaceProvider) Name() string { return "ocrspace" }

type ocrSpaceResponse struct {
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
	ParsedResults         []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
}

func (p *OCRSpaceProvider) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	fields := map[string]string{
		"base64Image":       dataURL,
		"apikey":            p.apiKey,
		"language":          p.language,
		"isOverlayRequired": "false",
		"detectOrientation": "true",
		"scale":             "true",
		"OCREngine":         strconv.Itoa(p.engine),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write multipart field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ocr request failed with status %d", resp.StatusCode)
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("%w: %s", ErrProvider, providerMessage(parsed.ErrorMessage))
	}
	if len(parsed.ParsedResults) == 0 {
		return "", fmt.Errorf("%w: empty parsed results", ErrProvider)
	}

	return strings.TrimSpace(parsed.ParsedResults[0].ParsedText), nil
}

// providerMessage flattens ErrorMessage, which ocr.space returns either as
// a string or as an array of strings.
func providerMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return strings.Join(many, "; ")
	}
	return string(raw)
}

func isClientTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
