package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPasswordResetMessage(t *testing.T) {
	url := "http://localhost:5173/auth/reset-password?token=abc&email=a%40example.com"
	msg := PasswordResetMessage("noreply@micro8gents.com", "a@example.com", url)

	assert.Equal(t, "Reset Your Micro8gents Password", msg.Subject)
	assert.Equal(t, "noreply@micro8gents.com", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	assert.Equal(t, "a@example.com", msg.Personalizations[0].To[0].Address)
	require.Len(t, msg.Content, 2)
	assert.Contains(t, msg.Content[0].Value, url)
	assert.Contains(t, msg.Content[1].Value, url)
}

func TestMockSend(t *testing.T) {
	s := New("", "noreply@micro8gents.com", zap.NewNop())
	assert.NoError(t, s.SendPasswordReset(context.Background(), "a@example.com", "http://x"))
}
