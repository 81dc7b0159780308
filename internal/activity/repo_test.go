package activity_test

import (
	"fmt"
	"path"
	"testing"
	"time"

	"github.com/robgonnella/aegis/internal/activity"
	"github.com/robgonnella/aegis/internal/test_util"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := test_util.GetDBConnection(path.Join(t.TempDir(), "activity.db"))

	if err != nil {
		t.Logf("failed to create test db: %s", err.Error())
		t.FailNow()
	}

	if err := test_util.Migrate(db, &activity.LogModel{}); err != nil {
		t.Logf("failed to migrate test db: %s", err.Error())
		t.FailNow()
	}

	return db
}

func TestActivitySqliteRepo(t *testing.T) {
	repo := activity.NewSqliteRepo(testDB(t))

	t.Run("returns empty log", func(st *testing.T) {
		entries, err := repo.Recent(10)

		assert.NoError(st, err)
		assert.Empty(st, entries)
	})

	t.Run("rejects empty message", func(st *testing.T) {
		_, err := repo.Add(&activity.Entry{Level: activity.Info})

		assert.Error(st, err)
	})

	t.Run("stamps entries without a time", func(st *testing.T) {
		before := time.Now().Add(-time.Second)

		added, err := repo.Add(&activity.Entry{
			Level:   activity.Warning,
			Message: "Blocked device 192.168.1.40 (de:ad:be:ef:00:01)",
		})

		assert.NoError(st, err)
		assert.NotZero(st, added.ID)
		assert.True(st, added.Time.After(before))
		assert.Equal(st, activity.Warning, added.Level)
	})

	t.Run("returns newest entries first up to limit", func(st *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := repo.Add(&activity.Entry{
				Level:   activity.Info,
				Message: fmt.Sprintf("entry %d", i),
			})

			assert.NoError(st, err)
		}

		entries, err := repo.Recent(3)

		assert.NoError(st, err)
		assert.Equal(st, 3, len(entries))
		assert.Equal(st, "entry 4", entries[0].Message)
		assert.Equal(st, "entry 3", entries[1].Message)
		assert.Equal(st, "entry 2", entries[2].Message)
	})

	t.Run("uses default limit for non-positive values", func(st *testing.T) {
		entries, err := repo.Recent(0)

		assert.NoError(st, err)
		assert.Equal(st, 6, len(entries))
		assert.Equal(st, activity.Warning, entries[5].Level)
	})
}
