// Package telephony renders TwiML for inbound calls and wraps the Twilio
// REST calls the dashboard uses.
package telephony

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.twilio.com"

type Options struct {
	AccountSID     string
	AuthToken      string
	FallbackNumber string
	BaseURL        string
	HTTPClient     *http.Client
}

type Service struct {
	accountSID     string
	authToken      string
	fallbackNumber string
	baseURL        string
	http           *http.Client
	log            *zap.Logger
}

func New(opts Options, log *zap.Logger) *Service {
	s := &Service{
		accountSID:     opts.AccountSID,
		authToken:      opts.AuthToken,
		fallbackNumber: opts.FallbackNumber,
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           opts.HTTPClient,
		log:            log,
	}
	if s.baseURL == "" {
		s.baseURL = defaultBaseURL
	}
	if s.http == nil {
		s.http = &http.Client{Timeout: 15 * time.Second}
	}
	return s
}

func (s *Service) Enabled() bool {
	return s.accountSID != "" && s.authToken != ""
}

// SignsRequests reports whether inbound webhooks must carry a valid
// X-Twilio-Signature.
func (s *Service) SignsRequests() bool {
	return s.authToken != ""
}

func (s *Service) SendSMS(ctx context.Context, to, from, body string) (string, error) {
	if !s.Enabled() {
		s.log.Info("[mock] twilio sms", zap.String("to", to), zap.String("from", from))
		return "MOCK_SID", nil
	}
	return s.post(ctx, "Messages.json", url.Values{"To": {to}, "From": {from}, "Body": {body}})
}

func (s *Service) MakeCall(ctx context.Context, to, from, twimlURL string) (string, error) {
	if !s.Enabled() {
		s.log.Info("[mock] twilio call", zap.String("to", to), zap.String("from", from), zap.String("url", twimlURL))
		return "MOCK_SID", nil
	}
	return s.post(ctx, "Calls.json", url.Values{"To": {to}, "From": {from}, "Url": {twimlURL}})
}

type apiResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

func (s *Service) post(ctx context.Context, resource string, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s", s.baseURL, s.accountSID, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio %s: %w", resource, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("twilio %s: decode: %w", resource, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio %s: status %d: %s", resource, resp.StatusCode, out.Message)
	}
	return out.SID, nil
}

// Signature computes X-Twilio-Signature: base64(HMAC-SHA1(token, url +
// sorted key/value pairs)).
func Signature(authToken, fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range params[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Service) ValidateSignature(fullURL string, params url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Signature(s.authToken, fullURL, params)
	return hmac.Equal([]byte(expected), []byte(signature))
}
