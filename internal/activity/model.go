package activity

import "time"

// LogModel is the gorm row representation of an Entry
type LogModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"index"`
	Level     string
	Message   string
}

// TableName overrides gorm's pluralized default
func (LogModel) TableName() string {
	return "activity_logs"
}

func modelToEntry(m *LogModel) *Entry {
	return &Entry{
		ID:      m.ID,
		Time:    m.CreatedAt,
		Level:   Level(m.Level),
		Message: m.Message,
	}
}
