package repositories

import "errors"

// ErrNotFound is returned by every repository when a record does not
// exist. GORM implementations translate gorm.ErrRecordNotFound into
// it so services never depend on the storage engine.
var ErrNotFound = errors.New("record not found")
