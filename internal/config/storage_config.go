package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	keyStorageBackend = "storage.backend"
	keyStoragePath    = "storage.path"

	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"
	StorageBackendMemory = "memory"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
}

type Storage struct {
	v *viper.Viper
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	return strings.ToLower(s.v.GetString(keyStorageBackend))
}

func (s Storage) GetStoragePath() string {
	return s.v.GetString(keyStoragePath)
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "admin-console", "session.json")
}
