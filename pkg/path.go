package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Prefix returns Name in upper case, the prefix of the environment
// variables the command reads, such as HAPARANDA_PARTIALS.
func Prefix() string { return strings.ToUpper(Name) }

// EnvVar returns the name of the environment variable for key.
func EnvVar(key string) string {
	return Prefix() + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// ConfigDir returns the directory holding the configuration file.
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the directory holding transient files such as the
// REPL history.
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// userDir returns Name under the directory base reports, falling back to
// hidden under the home directory and then to the working directory.
func userDir(base func() (string, error), hidden string) string {
	if dir, err := base(); err == nil {
		return filepath.Join(dir, Name)
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, hidden, Name)
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "."+Name)
	}

	return "." + Name
}
