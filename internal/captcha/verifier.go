// Package captcha proxies bot-protection token verification to the
// provider's siteverify endpoint with the server-held secret.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Verifier struct {
	secret     string
	action     string
	minScore   float64
	verifyURL  string
	httpClient *http.Client
}

func NewVerifier(secret, action, verifyURL string, minScore float64) *Verifier {
	return &Verifier{
		secret:     secret,
		action:     action,
		minScore:   minScore,
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type Result struct {
	OK     bool    `json:"ok"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks a client token: provider success, matching action and a
// score at or above the threshold.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("create siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	var parsed siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("decode siteverify response: %w", err)
	}

	if !parsed.Success {
		return Result{OK: false, Score: parsed.Score, Reason: strings.Join(parsed.ErrorCodes, "; ")}, nil
	}
	if v.action != "" && parsed.Action != v.action {
		return Result{OK: false, Score: parsed.Score, Reason: fmt.Sprintf("action mismatch: %s", parsed.Action)}, nil
	}
	if parsed.Score < v.minScore {
		return Result{OK: false, Score: parsed.Score, Reason: "score below threshold"}, nil
	}

	return Result{OK: true, Score: parsed.Score}, nil
}
