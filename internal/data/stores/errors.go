package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/handsandhope/hope/internal/data/db"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	corruptCodes = []int{sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN}

	corruptMessages = []string{
		"database disk image is malformed",
		"file is not a database",
		"database corruption",
	}
)

func sqliteCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

// IsBusyError reports whether err is SQLITE_BUSY.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3.SQLITE_BUSY
}

// IsCorruptionError reports whether err means the database file is unusable.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok {
		return slices.Contains(corruptCodes, code)
	}
	msg := err.Error()
	return slices.ContainsFunc(corruptMessages, func(m string) bool { return strings.Contains(msg, m) })
}

// IsNotFoundError reports whether err is sql.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// RecoverFromCorruption renames the database in dir, and its WAL and SHM
// side files, to <name>.corrupt.<timestamp> so the next Open starts from
// an empty schema. Saved preferences are lost.
func RecoverFromCorruption(dir string) error {
	dbPath := filepath.Join(dir, db.FileName)
	backup := dbPath + ".corrupt." + time.Now().Format("20060102-150405")

	if err := os.Rename(dbPath, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("move corrupted database aside: %w", err)
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		side := dbPath + suffix
		if _, err := os.Stat(side); err != nil {
			continue
		}
		if err := os.Rename(side, backup+suffix); err != nil {
			if rmErr := os.Remove(side); rmErr != nil {
				return fmt.Errorf("move %s file aside: %w", suffix, err)
			}
		}
	}
	return nil
}
