package hub_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questhub/questhub/internal/hub"
	"github.com/questhub/questhub/internal/progress"
)

func newTestStore(opts ...hub.StoreOption) *hub.Store {
	data := hub.AppData{
		Quests: []hub.Quest{sampleQuest()},
		Years:  []hub.Year{{ID: "y1", Title: "Grade 3"}},
		Stats:  progress.NewUserStats(progress.DefaultThresholds),
	}
	return hub.NewStore(data, opts...)
}

func TestStore_ToggleTask_Progression(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	res := store.ToggleTask(ctx, "q1", "t2")
	if res.Delta != 100 {
		t.Fatalf("Delta = %d, want 100", res.Delta)
	}

	snap := store.Snapshot()
	if snap.Stats.CurrentXP != 100 {
		t.Errorf("CurrentXP = %d, want 100", snap.Stats.CurrentXP)
	}
	if snap.Stats.Level != 2 {
		t.Errorf("Level = %d, want 2 at 100 XP", snap.Stats.Level)
	}
	if snap.Stats.StreakDays != 1 {
		t.Errorf("StreakDays = %d, want 1", snap.Stats.StreakDays)
	}
	if len(snap.Stats.DailyHistory) != 1 {
		t.Fatalf("DailyHistory entries = %d, want 1", len(snap.Stats.DailyHistory))
	}
	if snap.Stats.DailyHistory[0].XPEarned != 100 {
		t.Errorf("today's XP = %d, want 100", snap.Stats.DailyHistory[0].XPEarned)
	}
}

func TestStore_ToggleTask_ZeroXPCommits(t *testing.T) {
	quest := sampleQuest()
	quest.Tasks = append(quest.Tasks, hub.Task{ID: "t4", Title: "Reading", Type: hub.TypeLesson})
	store := hub.NewStore(hub.AppData{
		Quests: []hub.Quest{quest},
		Stats:  progress.NewUserStats(progress.DefaultThresholds),
	})
	ctx := context.Background()

	res := store.ToggleTask(ctx, "q1", "t4")
	if res.Delta != 0 {
		t.Errorf("Delta = %d, want 0", res.Delta)
	}

	committed, ok := store.Quest("q1")
	if !ok {
		t.Fatal("quest q1 missing")
	}
	if !committed.Tasks[3].IsCompleted {
		t.Error("zero-xp flip was not committed")
	}
	if committed.Tasks[3].XP != 0 {
		t.Errorf("task XP = %d, want 0", committed.Tasks[3].XP)
	}
}

func TestStore_EnrollStudent_EmailDomain(t *testing.T) {
	store := newTestStore(hub.WithEmailDomain("example.org"))
	ctx := context.Background()

	class := store.AddClass(ctx, "Grade 3 - Section A", "y1")
	student := store.EnrollStudent(ctx, "Jane Doe", class.ID)
	if student.Email != "jane.doe@example.org" {
		t.Errorf("Email = %q, want jane.doe@example.org", student.Email)
	}
}

func TestStore_ToggleTask_SameDayAccumulates(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	store.ToggleTask(ctx, "q1", "t1") // 50
	store.ToggleTask(ctx, "q1", "t2") // 100

	snap := store.Snapshot()
	if len(snap.Stats.DailyHistory) != 1 {
		t.Fatalf("DailyHistory entries = %d, want 1 (same-day merge)", len(snap.Stats.DailyHistory))
	}
	if snap.Stats.DailyHistory[0].XPEarned != 150 {
		t.Errorf("today's XP = %d, want 150", snap.Stats.DailyHistory[0].XPEarned)
	}
}

func TestStore_ToggleTask_ReversalKeepsHistory(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	store.ToggleTask(ctx, "q1", "t2")
	store.ToggleTask(ctx, "q1", "t2")

	snap := store.Snapshot()
	if snap.Stats.CurrentXP != 0 {
		t.Errorf("CurrentXP = %d, want 0", snap.Stats.CurrentXP)
	}
	if len(snap.Stats.DailyHistory) != 1 || snap.Stats.DailyHistory[0].XPEarned != 100 {
		t.Errorf("DailyHistory = %v, reversal must not rewrite the earn log", snap.Stats.DailyHistory)
	}
}

func TestStore_ToggleTask_QuestCompletion(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	store.ToggleTask(ctx, "q1", "t1")
	store.ToggleTask(ctx, "q1", "t2")
	res := store.ToggleTask(ctx, "q1", "t3")

	if res.Quest.Status != hub.QuestCompleted {
		t.Errorf("Status = %q, want completed", res.Quest.Status)
	}
	snap := store.Snapshot()
	if snap.Stats.TotalQuestsCompleted != 1 {
		t.Errorf("TotalQuestsCompleted = %d, want 1", snap.Stats.TotalQuestsCompleted)
	}

	// First completed quest unlocks the novice badge.
	var sawNovice bool
	for _, b := range res.Unlocked {
		if b.ID == "novice" {
			sawNovice = true
		}
	}
	if !sawNovice {
		t.Errorf("Unlocked = %v, want novice badge", res.Unlocked)
	}

	// Un-completing reverts both status and counter.
	res = store.ToggleTask(ctx, "q1", "t3")
	if res.Quest.Status != hub.QuestActive {
		t.Errorf("Status after reversal = %q, want active", res.Quest.Status)
	}
	snap = store.Snapshot()
	if snap.Stats.TotalQuestsCompleted != 0 {
		t.Errorf("TotalQuestsCompleted = %d, want 0", snap.Stats.TotalQuestsCompleted)
	}
	// Badges are never revoked.
	if len(snap.Stats.EarnedBadges) == 0 {
		t.Error("EarnedBadges emptied on reversal")
	}
}

func TestStore_ToggleTask_UnknownIDs(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	if res := store.ToggleTask(ctx, "missing", "t1"); res.Delta != 0 {
		t.Errorf("unknown quest: Delta = %d, want 0", res.Delta)
	}
	if res := store.ToggleTask(ctx, "q1", "missing"); res.Delta != 0 {
		t.Errorf("unknown task: Delta = %d, want 0", res.Delta)
	}
	snap := store.Snapshot()
	if snap.Stats.CurrentXP != 0 {
		t.Errorf("CurrentXP = %d, want 0 after no-ops", snap.Stats.CurrentXP)
	}
}

func TestStore_UpdateTask_StaleGuard(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	ok := store.UpdateTask(ctx, "q1", "t1", func(task hub.Task) hub.Task {
		task.MarkdownContent = "# Lesson"
		return task
	})
	if !ok {
		t.Fatal("UpdateTask() = false for live task")
	}
	quest, _ := store.Quest("q1")
	if quest.Tasks[0].MarkdownContent != "# Lesson" {
		t.Error("content not attached")
	}

	store.DeleteQuest(ctx, "q1")
	ok = store.UpdateTask(ctx, "q1", "t1", func(task hub.Task) hub.Task {
		return task
	})
	if ok {
		t.Error("UpdateTask() = true after quest deletion, stale result must be dropped")
	}
}

func TestStore_Subscribe(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	ch, cancel := store.Subscribe()
	defer cancel()

	store.ToggleTask(ctx, "q1", "t1")

	select {
	case snap := <-ch:
		if snap.Stats.CurrentXP != 50 {
			t.Errorf("snapshot CurrentXP = %d, want 50", snap.Stats.CurrentXP)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestStore_Subscribe_SlowConsumerGetsLatest(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	ch, cancel := store.Subscribe()
	defer cancel()

	store.ToggleTask(ctx, "q1", "t1")
	store.ToggleTask(ctx, "q1", "t2")

	select {
	case snap := <-ch:
		if snap.Stats.CurrentXP != 150 {
			t.Errorf("snapshot CurrentXP = %d, want latest 150", snap.Stats.CurrentXP)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestStore_EventsRecorded(t *testing.T) {
	logger := hub.NewMemoryEventLogger()
	store := newTestStore(hub.WithEventLogger(logger))
	ctx := context.Background()

	store.AddClass(ctx, "New Class", "y1")
	store.ToggleTask(ctx, "q1", "t1")

	events := logger.Events()
	types := make(map[string]int)
	for _, e := range events {
		types[e.Type]++
	}
	if types[hub.EventClassCreated] != 1 {
		t.Errorf("class_created events = %d, want 1", types[hub.EventClassCreated])
	}
	if types[hub.EventTaskToggled] != 1 {
		t.Errorf("task_toggled events = %d, want 1", types[hub.EventTaskToggled])
	}
}

type failingSaver struct{ calls int }

func (f *failingSaver) Save(context.Context, hub.AppData) error {
	f.calls++
	return errors.New("disk full")
}

func TestStore_SaveFailureIsBestEffort(t *testing.T) {
	saver := &failingSaver{}
	store := newTestStore(hub.WithSaver(saver))
	ctx := context.Background()

	res := store.ToggleTask(ctx, "q1", "t1")
	if res.Delta != 50 {
		t.Fatalf("Delta = %d, want 50 despite save failure", res.Delta)
	}
	if saver.calls != 1 {
		t.Errorf("saver calls = %d, want 1", saver.calls)
	}
	snap := store.Snapshot()
	if snap.Stats.CurrentXP != 50 {
		t.Errorf("CurrentXP = %d, in-memory state must survive save failure", snap.Stats.CurrentXP)
	}
}
