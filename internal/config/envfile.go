package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/voyagen/bretontv/internal/logging"
)

// loadEnvFiles sets environment variables from .env.local and .env found in
// the current working directory and in the directory of the executable.
// godotenv never overrides variables that are already set.
func loadEnvFiles() {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		if dir := filepath.Dir(exe); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		for _, name := range []string{".env.local", ".env"} {
			path := filepath.Join(dir, name)
			if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				logging.Warn("config: %s: %v", path, err)
			}
		}
	}
}
