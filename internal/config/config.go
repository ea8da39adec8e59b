// Package config resolves the segmentation model asset directory.
package config

import (
	"os"
	"path/filepath"
)

// ModelDirEnv is the environment variable the segmentation engine reads
// its model assets from.
const ModelDirEnv = "U2NET_HOME"

// ModelDir resolves the model asset directory and makes sure it exists.
// Precedence: explicit value, then the environment, then a "u2net"
// directory next to the executable.
func ModelDir(explicit string) (string, error) {
	dir := explicit
	if dir == "" {
		dir = os.Getenv(ModelDirEnv)
	}
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(filepath.Dir(exe), "u2net")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
