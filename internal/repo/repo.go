package repo

import (
	"errors"

	"gorm.io/gorm"
)

// GormRepo is the relational store behind the auth and board services. It is
// safe for concurrent use; gorm.DB carries its own pooling.
type GormRepo struct {
	DB *gorm.DB
}

var ErrNotFound = errors.New("record not found")
