package env

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientID(t *testing.T) {
	id := ClientID("wlbridge")
	require.True(t, strings.HasPrefix(id, "wlbridge-"))
	require.LessOrEqual(t, len(id), 23)
	require.Equal(t, id, ClientID("wlbridge"))
}

func TestShorten(t *testing.T) {
	require.Equal(t, "abc", Shorten("abc", 5))
	require.Equal(t, "ab", Shorten("abc", 2))
}
