package mailer

import (
	"bytes"
	"context"
	"io"
	"testing"

	"log/slog"

	"classroom-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksBackendFromConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m := New(&config.EmailConfig{SendgridKey: "SG.key"}, logger)
	assert.IsType(t, &SendgridMailer{}, m)

	m = New(&config.EmailConfig{}, logger)
	assert.IsType(t, &ConsoleMailer{}, m)
}

func TestConsoleMailerLogsCode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := NewConsoleMailer(&config.EmailConfig{FromEmail: "no-reply@classroom.local"}, logger)

	err := m.SendVerificationCode(context.Background(), "student@example.com", "student", "123456")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "student@example.com")
	assert.Contains(t, out, "123456")
}
