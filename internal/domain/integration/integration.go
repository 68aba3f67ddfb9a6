package integration

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
)

// ===============================
// Integration Type / Status
// ===============================

type Type string

const (
	TypeTwilio     Type = "twilio"
	TypeElevenLabs Type = "eleven_labs"
	TypeN8n        Type = "n8n"
	TypeStripe     Type = "stripe"
	TypeEmail      Type = "email"
)

var Types = []Type{TypeTwilio, TypeElevenLabs, TypeN8n, TypeStripe, TypeEmail}

func IsValidType(s string) bool {
	for _, t := range Types {
		if string(t) == s {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusError    Status = "error"
)

func InitialStatus() Status {
	return StatusInactive
}

func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusError:
		return true
	}
	return false
}

// ===============================
// Config variants
// ===============================

// Config is one variant of the per-type configuration union.
type Config interface {
	Type() Type
	Validate() error
}

type TwilioConfig struct {
	AccountSID  string `json:"accountSid"`
	AuthToken   string `json:"authToken"`
	PhoneNumber string `json:"phoneNumber"`
}

func (TwilioConfig) Type() Type { return TypeTwilio }

func (c TwilioConfig) Validate() error {
	return requireFields(map[string]string{
		"accountSid":  c.AccountSID,
		"authToken":   c.AuthToken,
		"phoneNumber": c.PhoneNumber,
	})
}

type ElevenLabsConfig struct {
	APIKey  string `json:"apiKey"`
	VoiceID string `json:"voiceId"`
}

func (ElevenLabsConfig) Type() Type { return TypeElevenLabs }

func (c ElevenLabsConfig) Validate() error {
	return requireFields(map[string]string{
		"apiKey":  c.APIKey,
		"voiceId": c.VoiceID,
	})
}

type N8nConfig struct {
	WebhookURL string `json:"webhookUrl"`
}

func (N8nConfig) Type() Type { return TypeN8n }

func (c N8nConfig) Validate() error {
	if err := requireFields(map[string]string{"webhookUrl": c.WebhookURL}); err != nil {
		return err
	}
	u, err := url.ParseRequestURI(c.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Invalid: []string{"webhookUrl"}}
	}
	return nil
}

type StripeConfig struct {
	APIKey string `json:"apiKey"`
}

func (StripeConfig) Type() Type { return TypeStripe }

func (c StripeConfig) Validate() error {
	return requireFields(map[string]string{"apiKey": c.APIKey})
}

type EmailConfig struct {
	Email string `json:"email"`
}

func (EmailConfig) Type() Type { return TypeEmail }

func (c EmailConfig) Validate() error {
	if err := requireFields(map[string]string{"email": c.Email}); err != nil {
		return err
	}
	if !strings.Contains(c.Email, "@") {
		return &ConfigError{Invalid: []string{"email"}}
	}
	return nil
}

// ===============================
// Parsing
// ===============================

// ConfigError lists the fields that made a config unusable.
type ConfigError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "invalid integration config: " + strings.Join(parts, "; ")
}

// ParseConfig decodes raw into the variant registered for t and validates it.
func ParseConfig(t Type, raw []byte) (Config, error) {
	var cfg Config
	switch t {
	case TypeTwilio:
		cfg = &TwilioConfig{}
	case TypeElevenLabs:
		cfg = &ElevenLabsConfig{}
	case TypeN8n:
		cfg = &N8nConfig{}
	case TypeStripe:
		cfg = &StripeConfig{}
	case TypeEmail:
		cfg = &EmailConfig{}
	default:
		return nil, httperr.ErrBusiness("invalid_integration_type")
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ConfigError{Invalid: []string{"config"}}
	}
	if err := json.Unmarshal(trimmed, cfg); err != nil {
		return nil, &ConfigError{Invalid: []string{"config"}}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &ConfigError{Missing: missing}
}
