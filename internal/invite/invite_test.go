package invite

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdash/internal/core"
)

func TestInvitationURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8081/invite/42", InvitationURL("http://localhost:8081/", "42"))
	assert.Equal(t, "https://events.example.com/invite/a%20b", InvitationURL("https://events.example.com", "a b"))
}

func TestQRCode(t *testing.T) {
	png, err := QRCode("http://localhost:8081/invite/1", 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG signature")

	_, err = QRCode("", 128)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestSelectStatuses(t *testing.T) {
	got, err := SelectStatuses([]string{"invitation", "feedback"})
	require.NoError(t, err)
	assert.Equal(t, []core.QRStatus{core.QRInvitation, core.QRFeedback}, got)

	got, err = SelectStatuses([]string{"welcome", "welcome", ""})
	require.NoError(t, err)
	assert.Equal(t, []core.QRStatus{core.QRWelcome}, got)

	got, err = SelectStatuses(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = SelectStatuses([]string{"invitation", "welcome", "images"})
	assert.ErrorIs(t, err, ErrTooManyStatuses)

	_, err = SelectStatuses([]string{"banner"})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
