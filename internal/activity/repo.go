package activity

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// SqliteRepo is our activity repo implementation for sqlite
type SqliteRepo struct {
	db *gorm.DB
}

// NewSqliteRepo returns a new activity sqlite repo
func NewSqliteRepo(db *gorm.DB) *SqliteRepo {
	return &SqliteRepo{
		db: db,
	}
}

// Add appends an entry. A zero time is stamped with the current time.
func (r *SqliteRepo) Add(e *Entry) (*Entry, error) {
	if e == nil || e.Message == "" {
		return nil, errors.New("activity message cannot be empty")
	}

	created := e.Time

	if created.IsZero() {
		created = time.Now()
	}

	model := &LogModel{
		CreatedAt: created,
		Level:     string(e.Level),
		Message:   e.Message,
	}

	if result := r.db.Create(model); result.Error != nil {
		return nil, result.Error
	}

	return modelToEntry(model), nil
}

// Recent returns up to limit entries, newest first
func (r *SqliteRepo) Recent(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	models := []LogModel{}

	if result := r.db.Order("id desc").Limit(limit).Find(&models); result.Error != nil {
		return nil, result.Error
	}

	entries := []*Entry{}

	for i := range models {
		entries = append(entries, modelToEntry(&models[i]))
	}

	return entries, nil
}
