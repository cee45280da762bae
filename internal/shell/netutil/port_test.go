package netutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreePort_SkipsBoundPort(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()
	taken := l.Addr().(*net.TCPAddr).Port

	port, err := FreePort(taken, taken+1)
	assert.ErrorIs(t, err, ErrNoFreePort)
	assert.Zero(t, port)
}

func TestFreePort_ReturnsPortInRange(t *testing.T) {
	port, err := FreePort(20000, 30000)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 20000)
	assert.Less(t, port, 30000)
}

func TestFreePort_EmptyRange(t *testing.T) {
	_, err := FreePort(9000, 9000)
	assert.ErrorIs(t, err, ErrNoFreePort)
}
