package integration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
)

func TestParseConfigVariants(t *testing.T) {
	cases := []struct {
		typ  Type
		raw  string
		want Config
	}{
		{TypeTwilio, `{"accountSid":"AC1","authToken":"tok","phoneNumber":"+15550001111"}`,
			&TwilioConfig{AccountSID: "AC1", AuthToken: "tok", PhoneNumber: "+15550001111"}},
		{TypeElevenLabs, `{"apiKey":"k","voiceId":"v"}`, &ElevenLabsConfig{APIKey: "k", VoiceID: "v"}},
		{TypeN8n, `{"webhookUrl":"https://n8n.example.com/hook"}`, &N8nConfig{WebhookURL: "https://n8n.example.com/hook"}},
		{TypeStripe, `{"apiKey":"sk_test"}`, &StripeConfig{APIKey: "sk_test"}},
		{TypeEmail, `{"email":"owner@example.com"}`, &EmailConfig{Email: "owner@example.com"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			cfg, err := ParseConfig(tc.typ, []byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg)
			assert.Equal(t, tc.typ, cfg.Type())
		})
	}
}

func TestParseConfigMissingFields(t *testing.T) {
	_, err := ParseConfig(TypeTwilio, []byte(`{"accountSid":"AC1"}`))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"authToken", "phoneNumber"}, cfgErr.Missing)
}

func TestParseConfigInvalidValues(t *testing.T) {
	bad := map[Type]string{
		TypeN8n:   `{"webhookUrl":"not a url"}`,
		TypeEmail: `{"email":"nobody"}`,
	}
	for typ, raw := range bad {
		_, err := ParseConfig(typ, []byte(raw))
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr), typ)
		assert.NotEmpty(t, cfgErr.Invalid)
	}

	_, err := ParseConfig(TypeStripe, []byte(`"sk_test"`))
	require.Error(t, err)
}

func TestParseConfigUnknownType(t *testing.T) {
	_, err := ParseConfig("fax", []byte(`{}`))
	assert.True(t, httperr.IsBusiness(err, "invalid_integration_type"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Twilio", Describe(TypeTwilio).Name)
	assert.Equal(t, "fax", Describe("fax").Name)
}
