package activity

import "time"

// DefaultLimit number of entries returned when no limit is given
const DefaultLimit = 50

// Level severity of an activity entry
type Level string

// Known levels
const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
	Danger  Level = "danger"
)

// Entry a single line of the activity log
type Entry struct {
	ID      uint
	Time    time.Time
	Level   Level
	Message string
}

// Repo interface representing access to the stored activity log
type Repo interface {
	Add(e *Entry) (*Entry, error)
	Recent(limit int) ([]*Entry, error)
}
