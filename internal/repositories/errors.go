package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is wrapped by every lookup that matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is wrapped when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate recognises unique violations from both postgres and sqlite.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
