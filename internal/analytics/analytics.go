// Package analytics derives monthly focus totals from the completion
// tree. It never writes; it subscribes to the whole completion root and
// rebuilds its report from each snapshot.
package analytics

import (
	"sort"
	"time"

	"github.com/sadopc/tasker/internal/plan"
)

// Status tracks the lifecycle of the subscription.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

// TaskStat accumulates one recurring block within a month.
type TaskStat struct {
	Key      string // "<dayType>::<identifier>::<activity>"
	Activity string
	DayType  plan.DayType
	Minutes  int
	Count    int
}

// Hours returns the block's focus time in fractional hours.
func (t TaskStat) Hours() float64 { return float64(t.Minutes) / 60 }

// MonthStat is one month's report, tasks ordered by focus time.
type MonthStat struct {
	Key     string // "2006-01", sorts chronologically
	Label   string // "March 2025"
	Minutes int
	Tasks   []TaskStat
}

// Hours returns the month's total focus time in fractional hours.
func (m MonthStat) Hours() float64 { return float64(m.Minutes) / 60 }

// Remote is the read side of the observable store.
type Remote interface {
	WatchNode(path string, fn func(value any, err error)) func()
}

// Aggregator keeps a live monthly report. onChange, when set, fires
// after every rebuild and must be safe to call from the store's
// notification path.
type Aggregator struct {
	status   Status
	err      error
	months   []MonthStat
	onChange func()
	unwatch  func()
}

// NewAggregator subscribes to the completion root and starts in
// StatusLoading until the first snapshot lands.
func NewAggregator(remote Remote, completionRoot string, onChange func()) *Aggregator {
	a := &Aggregator{onChange: onChange}
	a.unwatch = remote.WatchNode(completionRoot, a.onSnapshot)
	return a
}

// Close stops the subscription.
func (a *Aggregator) Close() {
	if a.unwatch != nil {
		a.unwatch()
		a.unwatch = nil
	}
}

func (a *Aggregator) onSnapshot(value any, err error) {
	if err != nil {
		a.status = StatusError
		a.err = err
	} else {
		a.status = StatusReady
		a.err = nil
		a.months = BuildReport(value)
	}
	if a.onChange != nil {
		a.onChange()
	}
}

func (a *Aggregator) Status() Status { return a.status }

func (a *Aggregator) Err() error { return a.err }

// Months returns the report, most recent month first.
func (a *Aggregator) Months() []MonthStat {
	out := make([]MonthStat, len(a.months))
	copy(out, a.months)
	return out
}

// BuildReport folds a completion-root snapshot into per-month totals.
// A record's month comes from its recordedAt timestamp when present,
// else from the path's date segment; records with neither, or whose
// time range yields no duration, are skipped.
func BuildReport(snapshot any) []MonthStat {
	root, ok := snapshot.(map[string]any)
	if !ok {
		return nil
	}

	type monthAcc struct {
		label   string
		minutes int
		tasks   map[string]*TaskStat
	}
	byMonth := make(map[string]*monthAcc)

	for formattedDate, rawDay := range root {
		day, ok := rawDay.(map[string]any)
		if !ok {
			continue
		}
		for rawDayType, rawEntries := range day {
			dayType := plan.DayType(rawDayType)
			entries, ok := rawEntries.(map[string]any)
			if !ok {
				continue
			}
			for entryKey, rawEntry := range entries {
				entry, ok := rawEntry.(map[string]any)
				if !ok {
					continue
				}
				if status, _ := entry["status"].(bool); !status {
					continue
				}

				timeRange, _ := entry["time"].(string)
				minutes, ok := plan.ExtractDurationMinutes(timeRange)
				if !ok {
					continue
				}

				when, ok := recordMonth(entry, formattedDate)
				if !ok {
					continue
				}
				monthKey := plan.MonthKey(when)

				acc := byMonth[monthKey]
				if acc == nil {
					acc = &monthAcc{label: plan.MonthLabel(when), tasks: make(map[string]*TaskStat)}
					byMonth[monthKey] = acc
				}
				acc.minutes += minutes

				activity, _ := entry["activity"].(string)
				identifier, _ := entry["id"].(string)
				if identifier == "" {
					identifier = entryKey
				}
				taskKey := string(dayType) + "::" + identifier + "::" + activity

				stat := acc.tasks[taskKey]
				if stat == nil {
					stat = &TaskStat{Key: taskKey, Activity: activity, DayType: dayType}
					acc.tasks[taskKey] = stat
				}
				stat.Minutes += minutes
				stat.Count++
			}
		}
	}

	months := make([]MonthStat, 0, len(byMonth))
	for key, acc := range byMonth {
		tasks := make([]TaskStat, 0, len(acc.tasks))
		for _, stat := range acc.tasks {
			tasks = append(tasks, *stat)
		}
		sort.Slice(tasks, func(i, j int) bool {
			if tasks[i].Minutes != tasks[j].Minutes {
				return tasks[i].Minutes > tasks[j].Minutes
			}
			return tasks[i].Activity < tasks[j].Activity
		})
		months = append(months, MonthStat{Key: key, Label: acc.label, Minutes: acc.minutes, Tasks: tasks})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Key > months[j].Key })
	return months
}

// recordMonth picks the timestamp that dates a record.
func recordMonth(entry map[string]any, formattedDate string) (time.Time, bool) {
	if recordedAt, _ := entry["recordedAt"].(string); recordedAt != "" {
		if when, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			return when, true
		}
	}
	return plan.ParsePathDate(formattedDate)
}
