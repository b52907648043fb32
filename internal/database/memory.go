package database

import (
	"context"

	"gorm.io/gorm"
)

// Memory is the Service used with the in-memory store; it has no connection to manage.
type Memory struct{}

func (Memory) Health(context.Context) map[string]string {
	return map[string]string{"status": "up", "message": "in-memory store"}
}

func (Memory) Close() error { return nil }

func (Memory) GetDB() *gorm.DB { return nil }
