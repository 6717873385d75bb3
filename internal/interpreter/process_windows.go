//go:build windows

package interpreter

import "os/exec"

// setProcessGroup is a no-op on Windows; termination goes through
// taskkill /T, which already walks the whole process tree.
func setProcessGroup(cmd *exec.Cmd) {}

func terminateProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {}
