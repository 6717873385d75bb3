package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"matlab-language-server/internal/common"
)

// Handshake is the JSON the interpreter writes once bootstrap
// completes, spec §6.3.
type Handshake struct {
	PID     int    `json:"pid"`
	Release string `json:"release"`
}

// waitForHandshake watches dir for the creation of the handshake file
// named fileName and returns its parsed contents, spec §4.2/§5: "watch
// for file-change events, not poll". A Write event is also accepted —
// some filesystems surface a zero-length create followed by a write.
func waitForHandshake(ctx context.Context, dir, fileName string) (Handshake, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Handshake{}, fmt.Errorf("interpreter: create handshake watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return Handshake{}, fmt.Errorf("interpreter: watch %s: %w", dir, err)
	}

	target := filepath.Join(dir, fileName)

	// The file may already exist from a prior run's watcher race; check
	// once up front before blocking on events.
	if hs, err := readHandshake(target); err == nil {
		return hs, nil
	}

	for {
		select {
		case <-ctx.Done():
			return Handshake{}, ctx.Err()
		case err := <-watcher.Errors:
			return Handshake{}, fmt.Errorf("interpreter: handshake watch error: %w", err)
		case event := <-watcher.Events:
			if event.Name != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			hs, err := readHandshake(target)
			if err != nil {
				common.InterpreterLogger.Warn("handshake file %s not yet readable: %v", target, err)
				continue
			}
			return hs, nil
		}
	}
}

func readHandshake(path string) (Handshake, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Handshake{}, err
	}
	var hs Handshake
	if err := json.Unmarshal(data, &hs); err != nil {
		return Handshake{}, fmt.Errorf("interpreter: malformed handshake file %s: %w", path, err)
	}
	return hs, nil
}
