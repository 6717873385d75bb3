package interpreter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBootstrapContextCreatesDir(t *testing.T) {
	bc, err := newBootstrapContext("key123")
	require.NoError(t, err)
	defer os.RemoveAll(bc.handshakeDir)

	info, err := os.Stat(bc.handshakeDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Positive(t, bc.busPort)
}

func TestBuildBootstrapArgsIncludesHandshakeAndPort(t *testing.T) {
	bc, err := newBootstrapContext("key123")
	require.NoError(t, err)
	defer os.RemoveAll(bc.handshakeDir)

	args := buildBootstrapArgs("/opt/helper", bc)
	require.Len(t, args, 4)
	assert.Equal(t, "-r", args[2])
	assert.Contains(t, args[3], bc.handshakePath())
	assert.Contains(t, args[3], "/opt/helper")
}

func TestResolveBinaryRequiresInstallPath(t *testing.T) {
	_, err := resolveBinary("")
	assert.Error(t, err)
}

func TestResolveBinaryJoinsInstallPath(t *testing.T) {
	path, err := resolveBinary("/usr/local/MATLAB/R2024b")
	require.NoError(t, err)
	assert.Contains(t, path, "/usr/local/MATLAB/R2024b")
}
