// Package hub holds the application state graph and the transition
// operations that mutate it. All operations produce new snapshots; the
// Store is the single writer that applies them.
package hub

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/questhub/questhub/internal/progress"
)

// ContentType classifies a task's activity kind.
type ContentType string

const (
	TypeLesson   ContentType = "Lesson"
	TypePractice ContentType = "Practice"
	TypeProject  ContentType = "Project"
	TypeGame     ContentType = "Game"
	TypeQuiz     ContentType = "Quiz"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeLesson, TypePractice, TypeProject, TypeGame, TypeQuiz:
		return true
	}
	return false
}

// Difficulty levels for quests.
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Student lifecycle statuses.
const (
	StatusActive = "active"
	StatusIdle   = "idle"
	StatusAtRisk = "at-risk"
)

// Quest statuses.
const (
	QuestActive    = "active"
	QuestCompleted = "completed"
	QuestArchived  = "archived"
)

// QuizQuestion is a single multiple-choice item inside a task.
type QuizQuestion struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// Flashcard is a front/back recall card inside a task.
type Flashcard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Slide is one card of a generated presentation deck.
type Slide struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       []string `json:"content"`
	VisualKeyword string   `json:"visual_keyword"`
	Layout        string   `json:"layout"` // center, split or big-number
}

// Task is a single learnable activity owned by exactly one quest.
// The generated-content fields are opaque payloads produced by the
// content delegate; the core never inspects them.
type Task struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	XP              int            `json:"xp"`
	IsCompleted     bool           `json:"is_completed"`
	Type            ContentType    `json:"type"`
	Resources       []string       `json:"resources,omitempty"`
	HTMLContent     string         `json:"html_content,omitempty"`
	MarkdownContent string         `json:"markdown_content,omitempty"`
	QuizContent     []QuizQuestion `json:"quiz_content,omitempty"`
	Flashcards      []Flashcard    `json:"flashcards,omitempty"`
	Slides          []Slide        `json:"slides,omitempty"`
}

// Year is a grade level / curriculum grouping. Immutable once created.
type Year struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Quest is a curriculum unit grouping tasks under one topic.
// TotalXP and EarnedXP are denormalized caches: TotalXP is the sum of all
// task XP values, EarnedXP the sum over completed tasks. Every transition
// that touches tasks must keep them consistent.
type Quest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	TotalXP     int       `json:"total_xp"`
	EarnedXP    int       `json:"earned_xp"`
	Tasks       []Task    `json:"tasks"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
	YearID      string    `json:"year_id,omitempty"`
}

// Student is an enrolled learner. Created via enrollment into a class,
// removed via RemoveStudent which also cleans the class roster.
type Student struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	XP             int       `json:"xp"`
	Level          int       `json:"level"`
	Streak         int       `json:"streak"`
	CompletedTasks int       `json:"completed_tasks"`
	LastActive     time.Time `json:"last_active"`
	Status         string    `json:"status"`
}

// ClassGroup is a teacher-managed roster. StudentIDs is an ordered list
// of Student foreign keys; an id appears at most once per class.
type ClassGroup struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	YearID     string   `json:"year_id"`
	StudentIDs []string `json:"student_ids"`
}

// AppData is the full persisted state graph.
type AppData struct {
	Quests   []Quest            `json:"quests"`
	Years    []Year             `json:"years"`
	Classes  []ClassGroup       `json:"classes"`
	Students []Student          `json:"students"`
	Stats    progress.UserStats `json:"stats"`
}

// NewID returns a fresh 32-char hex identifier.
func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
