package interpreter

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// resolveBinary derives the interpreter executable path from the
// configured install directory, spec §6.4 (matlabInstallPath: "base
// directory from which to derive the interpreter binary").
func resolveBinary(installPath string) (string, error) {
	if installPath == "" {
		return "", fmt.Errorf("interpreter: matlabInstallPath is not set")
	}

	name := "matlab"
	if runtime.GOOS == "windows" {
		name = "matlab.exe"
		return filepath.Join(installPath, "bin", "win64", name), nil
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(installPath, "bin", "maci64", name), nil
	}
	return filepath.Join(installPath, "bin", "glnxa64", name), nil
}
