package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/questhub/questhub/internal/progress"
)

// Saver persists the full state graph. Satisfied by the persistence
// adapter; nil means in-memory only.
type Saver interface {
	Save(ctx context.Context, data AppData) error
}

// ToggleResult is the outcome of a task toggle: the updated quest, the
// signed XP delta, and any badges unlocked by the resulting stats.
type ToggleResult struct {
	Quest    Quest
	Delta    int
	Unlocked []progress.Badge
}

// Store is the single writer over the application state. All mutations
// go through it: it applies the transition, recomputes progression,
// persists best-effort, records an analytics event and notifies
// subscribers. Reads return snapshots and never block writers for long.
type Store struct {
	mu          sync.RWMutex
	data        AppData
	thresholds  []int
	emailDomain string

	saver  Saver
	events EventLogger

	subMu  sync.Mutex
	subs   map[uint64]chan AppData
	nextID uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSaver attaches a persistence adapter. Save failures are logged,
// never propagated: the in-memory state stays authoritative.
func WithSaver(s Saver) StoreOption {
	return func(st *Store) {
		st.saver = s
	}
}

// WithEventLogger attaches an analytics event sink.
func WithEventLogger(l EventLogger) StoreOption {
	return func(st *Store) {
		st.events = l
	}
}

// WithThresholds overrides the level thresholds.
func WithThresholds(thresholds []int) StoreOption {
	return func(st *Store) {
		st.thresholds = thresholds
	}
}

// WithEmailDomain sets the domain for derived student emails. Empty
// keeps the roster default.
func WithEmailDomain(domain string) StoreOption {
	return func(st *Store) {
		st.emailDomain = domain
	}
}

// NewStore creates a store seeded with the given state.
func NewStore(data AppData, opts ...StoreOption) *Store {
	s := &Store{
		data:       data,
		thresholds: progress.DefaultThresholds,
		events:     NopEventLogger{},
		subs:       make(map[uint64]chan AppData),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state. Top-level slices are
// copied; callers must not mutate nested task slices.
func (s *Store) Snapshot() AppData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyData(s.data)
}

func copyData(d AppData) AppData {
	out := d
	out.Quests = append([]Quest(nil), d.Quests...)
	out.Years = append([]Year(nil), d.Years...)
	out.Classes = append([]ClassGroup(nil), d.Classes...)
	out.Students = append([]Student(nil), d.Students...)
	return out
}

// Subscribe registers a state-change feed. Each committed mutation
// delivers a snapshot; slow consumers drop intermediate snapshots
// rather than block the writer. The returned cancel func must be called
// to release the channel.
func (s *Store) Subscribe() (<-chan AppData, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan AppData, 1)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Store) notify(snapshot AppData) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			// Drain the stale snapshot and replace it with the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// commit persists, records the event and fans out the new snapshot.
// Called after the write lock is released; snapshot is already taken.
func (s *Store) commit(ctx context.Context, snapshot AppData, event Event) {
	if s.saver != nil {
		if err := s.saver.Save(ctx, snapshot); err != nil {
			slog.Error("state save failed, continuing on memory", "error", err)
		}
	}
	if err := s.events.LogEvent(event); err != nil {
		slog.Warn("event log failed", "type", event.Type, "error", err)
	}
	s.notify(snapshot)
}

// ReplaceAll swaps in a complete state graph, used for restore and
// import flows.
func (s *Store) ReplaceAll(ctx context.Context, data AppData) {
	s.mu.Lock()
	s.data = data
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{Type: EventStateRestored})
}

// AddClass creates an empty class and returns it.
func (s *Store) AddClass(ctx context.Context, title, yearID string) ClassGroup {
	s.mu.Lock()
	s.data.Classes = AddClass(s.data.Classes, title, yearID)
	class := s.data.Classes[len(s.data.Classes)-1]
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{
		Type:     EventClassCreated,
		EntityID: class.ID,
		Data:     map[string]any{"title": title},
	})
	return class
}

// DeleteClass removes a class by id.
func (s *Store) DeleteClass(ctx context.Context, id string) {
	s.mu.Lock()
	s.data.Classes = DeleteClass(s.data.Classes, id)
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{Type: EventClassDeleted, EntityID: id})
}

// EnrollStudent creates a student and adds them to the class roster.
func (s *Store) EnrollStudent(ctx context.Context, name, classID string) Student {
	s.mu.Lock()
	s.data.Students, s.data.Classes = EnrollStudent(s.data.Students, s.data.Classes, name, classID, s.emailDomain)
	student := s.data.Students[len(s.data.Students)-1]
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{
		Type:     EventStudentEnrolled,
		EntityID: student.ID,
		Data:     map[string]any{"class_id": classID},
	})
	return student
}

// EnrollStudentsBulk enrolls one student per non-blank name and returns
// how many were created.
func (s *Store) EnrollStudentsBulk(ctx context.Context, names []string, classID string) int {
	s.mu.Lock()
	before := len(s.data.Students)
	s.data.Students, s.data.Classes = EnrollStudentsBulk(s.data.Students, s.data.Classes, names, classID, s.emailDomain)
	created := len(s.data.Students) - before
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{
		Type:     EventStudentEnrolled,
		EntityID: classID,
		Data:     map[string]any{"count": created, "bulk": true},
	})
	return created
}

// RemoveStudent deletes a student and cleans the class roster.
func (s *Store) RemoveStudent(ctx context.Context, studentID, classID string) {
	s.mu.Lock()
	s.data.Students, s.data.Classes = RemoveStudent(s.data.Students, s.data.Classes, studentID, classID)
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{
		Type:     EventStudentRemoved,
		EntityID: studentID,
		Data:     map[string]any{"class_id": classID},
	})
}

// UpsertQuest inserts or replaces a quest.
func (s *Store) UpsertQuest(ctx context.Context, quest Quest) {
	s.mu.Lock()
	s.data.Quests = UpsertQuest(s.data.Quests, quest)
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{
		Type:     EventQuestCreated,
		EntityID: quest.ID,
		Data:     map[string]any{"title": quest.Title, "tasks": len(quest.Tasks)},
	})
}

// DeleteQuest removes a quest by id.
func (s *Store) DeleteQuest(ctx context.Context, id string) {
	s.mu.Lock()
	s.data.Quests = DeleteQuest(s.data.Quests, id)
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{Type: EventQuestDeleted, EntityID: id})
}

// Quest returns a quest by id.
func (s *Store) Quest(id string) (Quest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.data.Quests {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}

// ToggleTask flips a task's completion and runs the full progression
// transaction: XP delta, streak, quest completion and badge unlocks all
// land in one snapshot. Unknown ids are a no-op with a zero result.
func (s *Store) ToggleTask(ctx context.Context, questID, taskID string) ToggleResult {
	s.mu.Lock()

	qi := -1
	for i, q := range s.data.Quests {
		if q.ID == questID {
			qi = i
			break
		}
	}
	if qi < 0 {
		s.mu.Unlock()
		return ToggleResult{}
	}

	quest, delta, found := ToggleTask(s.data.Quests[qi], taskID)
	if !found {
		s.mu.Unlock()
		return ToggleResult{}
	}

	stats := progress.ApplyXPDelta(s.data.Stats, delta, s.thresholds)
	stats.StreakDays = progress.ComputeStreak(stats.DailyHistory, time.Now())

	wasCompleted := s.data.Quests[qi].Status == QuestCompleted
	nowCompleted := quest.TotalXP > 0 && quest.EarnedXP >= quest.TotalXP
	switch {
	case nowCompleted && !wasCompleted:
		quest.Status = QuestCompleted
		stats.TotalQuestsCompleted++
	case !nowCompleted && wasCompleted:
		quest.Status = QuestActive
		if stats.TotalQuestsCompleted > 0 {
			stats.TotalQuestsCompleted--
		}
	case !nowCompleted:
		quest.Status = s.data.Quests[qi].Status
	}

	stats, unlocked := progress.CheckBadgeUnlocks(stats, progress.Catalog)

	quests := append([]Quest(nil), s.data.Quests...)
	quests[qi] = quest
	s.data.Quests = quests
	s.data.Stats = stats
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{
		Type:     EventTaskToggled,
		EntityID: taskID,
		Data:     map[string]any{"quest_id": questID, "delta": delta},
	})
	for _, b := range unlocked {
		if err := s.events.LogEvent(Event{Type: EventBadgeUnlocked, EntityID: b.ID}); err != nil {
			slog.Warn("event log failed", "type", EventBadgeUnlocked, "error", err)
		}
	}
	if quest.Status == QuestCompleted && !wasCompleted {
		if err := s.events.LogEvent(Event{Type: EventQuestCompleted, EntityID: questID}); err != nil {
			slog.Warn("event log failed", "type", EventQuestCompleted, "error", err)
		}
	}

	return ToggleResult{Quest: quest, Delta: delta, Unlocked: unlocked}
}

// UpdateTask rewrites one task via fn and refreshes the quest's XP
// caches. Returns false when the quest or task no longer exists, which
// lets slow generation results land safely after a delete.
func (s *Store) UpdateTask(ctx context.Context, questID, taskID string, fn func(Task) Task) bool {
	s.mu.Lock()

	qi := -1
	for i, q := range s.data.Quests {
		if q.ID == questID {
			qi = i
			break
		}
	}
	if qi < 0 {
		s.mu.Unlock()
		return false
	}

	quest := s.data.Quests[qi]
	ti := -1
	for i, t := range quest.Tasks {
		if t.ID == taskID {
			ti = i
			break
		}
	}
	if ti < 0 {
		s.mu.Unlock()
		return false
	}

	tasks := append([]Task(nil), quest.Tasks...)
	updated := fn(tasks[ti])
	updated.ID = taskID // ids are stable across content updates
	tasks[ti] = updated
	quest.Tasks = tasks
	quest.TotalXP, quest.EarnedXP = SumTaskXP(tasks)

	quests := append([]Quest(nil), s.data.Quests...)
	quests[qi] = quest
	s.data.Quests = quests
	snapshot := copyData(s.data)
	s.mu.Unlock()

	s.commit(ctx, snapshot, Event{
		Type:     EventTaskUpdated,
		EntityID: taskID,
		Data:     map[string]any{"quest_id": questID},
	})
	return true
}
