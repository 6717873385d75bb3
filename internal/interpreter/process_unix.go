//go:build !windows

package interpreter

import (
	"os/exec"
	"syscall"

	"matlab-language-server/internal/common"
)

// setProcessGroup puts the child in its own process group so the
// interpreter's own descendants are reachable for signaling, since
// MATLAB may fork an intermediate launcher process.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

func terminateProcessGroup(cmd *exec.Cmd) {
	signalProcessGroup(cmd, syscall.SIGTERM)
}

func killProcessGroup(cmd *exec.Cmd) {
	signalProcessGroup(cmd, syscall.SIGKILL)
}

func signalProcessGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, sig); err != nil {
		common.InterpreterLogger.Warn("signal %v to process group %d failed: %v", sig, cmd.Process.Pid, err)
	}
}
