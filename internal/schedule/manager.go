// Package schedule owns the two day-type templates and every write to
// the remote completion tree. Template state is kept in memory, in the
// local cache, and in the remote document, with the in-memory copy
// updated optimistically and the remote reconciled as it becomes
// available.
package schedule

import (
	"encoding/json"
	"sync"

	"github.com/sadopc/tasker/internal/plan"
)

// CacheKey is the fixed local-cache key for serialized templates.
const CacheKey = "tasker/schedules"

// Cache is the local persistence collaborator. Failures are swallowed;
// the cache is an optimization, not a source of truth.
type Cache interface {
	CacheGet(key string) (string, bool, error)
	CacheSet(key, value string) error
}

// Remote is the observable key-path store holding the template document
// and the completion tree.
type Remote interface {
	ReadNode(path string) (any, error)
	WriteNode(path string, value any) error
	WatchNode(path string, fn func(value any, err error)) func()
}

// CompletionRecord marks one schedule block completed on one day.
// Absence means not completed; presence with Status != true is treated
// the same as absence.
type CompletionRecord struct {
	ID         string `json:"id"`
	Time       string `json:"time"`
	Activity   string `json:"activity"`
	Status     bool   `json:"status"`
	RecordedAt string `json:"recordedAt,omitempty"`
}

type templateDoc struct {
	Work []plan.ScheduleItem `json:"work"`
	Off  []plan.ScheduleItem `json:"off"`
}

// Manager synchronizes templates and records completions.
type Manager struct {
	cache          Cache
	remote         Remote
	templatePath   string
	completionRoot string

	mu          sync.Mutex
	schedules   map[plan.DayType][]plan.ScheduleItem
	remoteReady bool
	pending     map[plan.DayType][]plan.ScheduleItem

	unwatch func()
}

// NewManager seeds defaults, overlays the local cache, and subscribes
// to the remote template document. The remote value, once delivered,
// wins over both.
func NewManager(cache Cache, remote Remote, templatePath, completionRoot string) *Manager {
	m := &Manager{
		cache:          cache,
		remote:         remote,
		templatePath:   templatePath,
		completionRoot: completionRoot,
		schedules:      plan.DefaultSchedules(),
	}

	m.loadCache()
	m.unwatch = remote.WatchNode(templatePath, m.onTemplateSnapshot)
	return m
}

// Close stops the remote template subscription.
func (m *Manager) Close() {
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
}

func (m *Manager) loadCache() {
	raw, ok, err := m.cache.CacheGet(CacheKey)
	if err != nil || !ok {
		return
	}
	var doc templateDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return
	}
	m.mu.Lock()
	m.schedules = hydrate(doc)
	m.mu.Unlock()
}

func (m *Manager) onTemplateSnapshot(value any, err error) {
	if err != nil {
		// The subscription is live even if the first read failed;
		// release queued writes rather than holding them forever.
		m.mu.Lock()
		m.remoteReady = true
		pending := m.pending
		m.pending = nil
		m.mu.Unlock()
		m.flush(pending)
		return
	}

	next := hydrate(decodeTemplates(value))
	seed := value == nil

	m.mu.Lock()
	m.schedules = next
	m.remoteReady = true
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	m.persistCache(next)
	if seed {
		// First writer seeds the defaults so other devices converge.
		m.remote.WriteNode(m.templatePath, toDoc(next))
	}
	m.flush(pending)
}

func (m *Manager) flush(pending map[plan.DayType][]plan.ScheduleItem) {
	if pending == nil {
		return
	}
	if err := m.remote.WriteNode(m.templatePath, toDoc(pending)); err != nil {
		m.mu.Lock()
		if m.pending == nil {
			m.pending = pending
		}
		m.mu.Unlock()
	}
}

func (m *Manager) persistCache(schedules map[plan.DayType][]plan.ScheduleItem) {
	encoded, err := json.Marshal(toDoc(schedules))
	if err != nil {
		return
	}
	m.cache.CacheSet(CacheKey, string(encoded))
}

func (m *Manager) persistRemote(schedules map[plan.DayType][]plan.ScheduleItem) {
	m.mu.Lock()
	if !m.remoteReady {
		m.pending = schedules
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.remote.WriteNode(m.templatePath, toDoc(schedules)); err != nil {
		m.mu.Lock()
		m.pending = schedules
		m.mu.Unlock()
	}
}

// setAndPersist applies updater to a copy of the current templates and
// writes the result everywhere: memory first (optimistic), then cache,
// then remote (queued until the subscription signals readiness).
func (m *Manager) setAndPersist(updater func(map[plan.DayType][]plan.ScheduleItem) map[plan.DayType][]plan.ScheduleItem) {
	m.mu.Lock()
	next := updater(copySchedules(m.schedules))
	m.schedules = next
	m.mu.Unlock()

	m.persistCache(next)
	m.persistRemote(next)
}

// Schedules returns a copy of both templates.
func (m *Manager) Schedules() map[plan.DayType][]plan.ScheduleItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySchedules(m.schedules)
}

// ScheduleFor returns a copy of one template.
func (m *Manager) ScheduleFor(dayType plan.DayType) []plan.ScheduleItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.schedules[dayType]
	out := make([]plan.ScheduleItem, len(list))
	copy(out, list)
	return out
}

// SetSchedule replaces a whole template list.
func (m *Manager) SetSchedule(dayType plan.DayType, list []plan.ScheduleItem) {
	m.setAndPersist(func(prev map[plan.DayType][]plan.ScheduleItem) map[plan.DayType][]plan.ScheduleItem {
		prev[dayType] = plan.SanitizeList(dayType, list)
		return prev
	})
}

// UpdateItem edits the row at index, keeping its id. Rows edited into
// an empty time or activity are dropped.
func (m *Manager) UpdateItem(dayType plan.DayType, index int, timeRange, activity string) {
	m.setAndPersist(func(prev map[plan.DayType][]plan.ScheduleItem) map[plan.DayType][]plan.ScheduleItem {
		list := prev[dayType]
		if index < 0 || index >= len(list) {
			return prev
		}
		updated := plan.NormalizeItem(dayType, plan.ScheduleItem{
			ID:       list[index].ID,
			Time:     timeRange,
			Activity: activity,
		})
		next := make([]plan.ScheduleItem, 0, len(list))
		for i, item := range list {
			if i == index {
				item = updated
			}
			if item.Time == "" || item.Activity == "" {
				continue
			}
			next = append(next, item)
		}
		prev[dayType] = next
		return prev
	})
}

// AddItem appends a row; invalid rows are ignored.
func (m *Manager) AddItem(dayType plan.DayType, item plan.ScheduleItem) {
	m.setAndPersist(func(prev map[plan.DayType][]plan.ScheduleItem) map[plan.DayType][]plan.ScheduleItem {
		normalized := plan.NormalizeItem(dayType, item)
		if normalized.Time == "" || normalized.Activity == "" {
			return prev
		}
		prev[dayType] = append(prev[dayType], normalized)
		return prev
	})
}

// RemoveItem deletes the row at index.
func (m *Manager) RemoveItem(dayType plan.DayType, index int) {
	m.setAndPersist(func(prev map[plan.DayType][]plan.ScheduleItem) map[plan.DayType][]plan.ScheduleItem {
		list := prev[dayType]
		if index < 0 || index >= len(list) {
			return prev
		}
		prev[dayType] = append(list[:index:index], list[index+1:]...)
		return prev
	})
}

// ResetDefaults restores the built-in template for one day type.
func (m *Manager) ResetDefaults(dayType plan.DayType) {
	m.setAndPersist(func(prev map[plan.DayType][]plan.ScheduleItem) map[plan.DayType][]plan.ScheduleItem {
		if list := plan.DefaultSchedule(dayType); list != nil {
			prev[dayType] = list
		}
		return prev
	})
}

func copySchedules(schedules map[plan.DayType][]plan.ScheduleItem) map[plan.DayType][]plan.ScheduleItem {
	out := make(map[plan.DayType][]plan.ScheduleItem, len(schedules))
	for dayType, list := range schedules {
		copied := make([]plan.ScheduleItem, len(list))
		copy(copied, list)
		out[dayType] = copied
	}
	return out
}

func toDoc(schedules map[plan.DayType][]plan.ScheduleItem) templateDoc {
	return templateDoc{
		Work: schedules[plan.DayTypeWork],
		Off:  schedules[plan.DayTypeOff],
	}
}

// decodeTemplates tolerates any snapshot shape; unusable parts come
// back nil and hydrate fills them from the defaults.
func decodeTemplates(value any) templateDoc {
	var doc templateDoc
	if value == nil {
		return doc
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return doc
	}
	json.Unmarshal(encoded, &doc)
	return doc
}

func hydrate(doc templateDoc) map[plan.DayType][]plan.ScheduleItem {
	out := make(map[plan.DayType][]plan.ScheduleItem, 2)
	if doc.Work != nil {
		out[plan.DayTypeWork] = plan.SanitizeList(plan.DayTypeWork, doc.Work)
	} else {
		out[plan.DayTypeWork] = plan.DefaultSchedule(plan.DayTypeWork)
	}
	if doc.Off != nil {
		out[plan.DayTypeOff] = plan.SanitizeList(plan.DayTypeOff, doc.Off)
	} else {
		out[plan.DayTypeOff] = plan.DefaultSchedule(plan.DayTypeOff)
	}
	return out
}
