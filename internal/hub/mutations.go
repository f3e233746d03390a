package hub

import (
	"strings"
	"time"

	"github.com/questhub/questhub/internal/roster"
)

// The transition functions below never mutate their inputs: each returns
// a fresh slice (sharing unchanged elements) so callers can diff
// snapshots and trigger re-renders safely. Operations on unknown ids are
// no-ops, not errors; they originate from UI events where the id is
// valid by construction.

// AddClass appends a new class with an empty roster. Duplicate titles
// are allowed.
func AddClass(classes []ClassGroup, title, yearID string) []ClassGroup {
	out := append([]ClassGroup(nil), classes...)
	return append(out, ClassGroup{
		ID:         NewID(),
		Title:      title,
		YearID:     yearID,
		StudentIDs: []string{},
	})
}

// DeleteClass removes the class by id. Students enrolled in it are NOT
// cascade-deleted: they stay in the student collection, unreferenced.
// Class deletion is rare and orphaned students remain manageable from
// the student list, so the asymmetry with RemoveStudent is intentional.
func DeleteClass(classes []ClassGroup, id string) []ClassGroup {
	out := make([]ClassGroup, 0, len(classes))
	for _, c := range classes {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func newStudent(name, emailDomain string) Student {
	return Student{
		ID:         NewID(),
		Name:       name,
		Email:      roster.DeriveEmail(name, emailDomain),
		Level:      1,
		LastActive: time.Now(),
		Status:     StatusActive,
	}
}

func appendToRoster(classes []ClassGroup, classID string, studentIDs ...string) []ClassGroup {
	out := append([]ClassGroup(nil), classes...)
	for i, c := range out {
		if c.ID != classID {
			continue
		}
		ids := append([]string(nil), c.StudentIDs...)
		for _, id := range studentIDs {
			dup := false
			for _, existing := range ids {
				if existing == id {
					dup = true
					break
				}
			}
			if !dup {
				ids = append(ids, id)
			}
		}
		out[i].StudentIDs = ids
	}
	return out
}

// EnrollStudent creates a zeroed student record and appends its id to
// the target class roster. An empty emailDomain falls back to the
// roster default.
func EnrollStudent(students []Student, classes []ClassGroup, name, classID, emailDomain string) ([]Student, []ClassGroup) {
	s := newStudent(name, emailDomain)
	outStudents := append(append([]Student(nil), students...), s)
	return outStudents, appendToRoster(classes, classID, s.ID)
}

// EnrollStudentsBulk enrolls one student per name. Blank and
// whitespace-only names are skipped; each remaining name becomes an
// independent student record (no all-or-nothing semantics).
func EnrollStudentsBulk(students []Student, classes []ClassGroup, names []string, classID, emailDomain string) ([]Student, []ClassGroup) {
	outStudents := append([]Student(nil), students...)
	var ids []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s := newStudent(name, emailDomain)
		outStudents = append(outStudents, s)
		ids = append(ids, s.ID)
	}
	return outStudents, appendToRoster(classes, classID, ids...)
}

// RemoveStudent deletes the student record and removes its id from the
// given class roster. This is the one cascading delete: a roster must
// never reference a deleted student.
func RemoveStudent(students []Student, classes []ClassGroup, studentID, classID string) ([]Student, []ClassGroup) {
	outStudents := make([]Student, 0, len(students))
	for _, s := range students {
		if s.ID != studentID {
			outStudents = append(outStudents, s)
		}
	}

	outClasses := append([]ClassGroup(nil), classes...)
	for i, c := range outClasses {
		if c.ID != classID {
			continue
		}
		ids := make([]string, 0, len(c.StudentIDs))
		for _, id := range c.StudentIDs {
			if id != studentID {
				ids = append(ids, id)
			}
		}
		outClasses[i].StudentIDs = ids
	}
	return outStudents, outClasses
}

// UpsertQuest replaces the quest with a matching id, or prepends it
// when new. Newest-first is the display convention, preserved here so
// callers never re-sort.
func UpsertQuest(quests []Quest, quest Quest) []Quest {
	for i, q := range quests {
		if q.ID == quest.ID {
			out := append([]Quest(nil), quests...)
			out[i] = quest
			return out
		}
	}
	out := make([]Quest, 0, len(quests)+1)
	out = append(out, quest)
	return append(out, quests...)
}

// DeleteQuest removes a quest by id. Tasks are embedded, so nothing else
// needs cleanup.
func DeleteQuest(quests []Quest, id string) []Quest {
	out := make([]Quest, 0, len(quests))
	for _, q := range quests {
		if q.ID != id {
			out = append(out, q)
		}
	}
	return out
}

// ToggleTask flips a task's completion state and returns the updated
// quest plus the signed XP delta (+xp on completion, -xp on reversal).
// The caller feeds the delta into the global stats so quest-local and
// global progression move in the same transaction. An unknown task id
// returns the quest unchanged with found false; a zero-XP task still
// flips, its delta is just zero.
func ToggleTask(quest Quest, taskID string) (Quest, int, bool) {
	idx := -1
	for i, t := range quest.Tasks {
		if t.ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return quest, 0, false
	}

	tasks := append([]Task(nil), quest.Tasks...)
	tasks[idx].IsCompleted = !tasks[idx].IsCompleted
	delta := tasks[idx].XP
	if !tasks[idx].IsCompleted {
		delta = -delta
	}

	out := quest
	out.Tasks = tasks
	out.EarnedXP += delta
	return out, delta, true
}

// SumTaskXP recomputes the denormalized XP caches from a task list.
func SumTaskXP(tasks []Task) (total, earned int) {
	for _, t := range tasks {
		total += t.XP
		if t.IsCompleted {
			earned += t.XP
		}
	}
	return total, earned
}
