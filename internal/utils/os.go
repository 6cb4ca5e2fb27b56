package utils

import (
	"os"
	"path/filepath"
)

// ExecutableName returns the base name of the running binary for use
// in help and usage text.
func ExecutableName() string {
	executable, err := os.Executable()
	if err != nil {
		return "keydeck"
	}
	return filepath.Base(executable)
}
