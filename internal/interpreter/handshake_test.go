package interpreter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForHandshakeSeesPreexistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, handshakeFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"pid":123,"release":"R2024b"}`), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	hs, err := waitForHandshake(ctx, dir, handshakeFileName)
	require.NoError(t, err)
	assert.Equal(t, 123, hs.PID)
	assert.Equal(t, "R2024b", hs.Release)
}

func TestWaitForHandshakeSeesCreatedFile(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resultCh := make(chan Handshake, 1)
	errCh := make(chan error, 1)
	go func() {
		hs, err := waitForHandshake(ctx, dir, handshakeFileName)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- hs
	}()

	time.Sleep(50 * time.Millisecond)
	path := filepath.Join(dir, handshakeFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"pid":456,"release":"R2023a"}`), 0o644))

	select {
	case hs := <-resultCh:
		assert.Equal(t, 456, hs.PID)
	case err := <-errCh:
		t.Fatalf("waitForHandshake failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handshake")
	}
}

func TestWaitForHandshakeRespectsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := waitForHandshake(ctx, dir, handshakeFileName)
	assert.Error(t, err)
}
