package plan

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a free-form per-day todo. Tasks live only in memory for the
// session; they are never persisted remotely.
type Task struct {
	ID        string
	Title     string
	Completed bool
}

// NewTaskID returns a unique task id scoped to its day.
func NewTaskID(dateKey string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "task-" + dateKey + "-" + ts + "-" + suffix
}
