// Package paths initializes Zeku's filepaths, directories, etc.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"zeku/internal/domain/consts"
)

const (
	zDir        = ".zeku"
	zDBFile     = "zeku.db"
	zLogFile    = "zeku.log"
	zCacheDir   = "cache"
	zConfigFile = "config.toml"
)

// File and directory path strings.
var (
	HomeZekuDir    string
	DBFilePath     string
	LogFilePath    string
	CacheDir       string
	ConfigFilePath string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
func InitProgFilesDirs() error {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}
	return initUnder(filepath.Join(userHomeDir, zDir))
}

func initUnder(root string) error {
	HomeZekuDir = root
	if err := os.MkdirAll(HomeZekuDir, consts.PermsHomeProgDir); err != nil {
		return fmt.Errorf("failed to make directories: %w", err)
	}

	DBFilePath = filepath.Join(HomeZekuDir, zDBFile)
	LogFilePath = filepath.Join(HomeZekuDir, zLogFile)
	CacheDir = filepath.Join(HomeZekuDir, zCacheDir)
	ConfigFilePath = filepath.Join(HomeZekuDir, zConfigFile)

	if err := os.MkdirAll(CacheDir, consts.PermsCacheDir); err != nil {
		return fmt.Errorf("failed to make cache directory: %w", err)
	}
	return nil
}
