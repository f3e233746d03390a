// Package content generates quest, lesson, quiz and tutoring material.
// The Gemini-backed generator produces real content; the demo generator
// serves canned material when no API key is configured or a call fails.
package content

import (
	"context"

	"github.com/questhub/questhub/internal/hub"
)

// Tutor personas. Each maps to a distinct system prompt.
const (
	PersonaSocratic    = "socratic"
	PersonaEncouraging = "encouraging"
	PersonaRoast       = "roast"
	PersonaELI5        = "eli5"
)

// QuestRequest describes the quest to generate.
type QuestRequest struct {
	Topic      string
	Difficulty string
	YearID     string
}

// TaskRequest describes a single task to generate into an existing quest.
type TaskRequest struct {
	QuestTitle string
	TaskTitle  string
	Type       hub.ContentType
}

// TutorRequest is one turn of a tutoring conversation.
type TutorRequest struct {
	Persona  string
	Context  string // lesson or task the student is working on
	History  []TutorTurn
	Question string
}

// TutorTurn is a prior exchange in the conversation.
type TutorTurn struct {
	Role    string // "student" or "tutor"
	Content string
}

// Generator produces learning content. Implementations must return
// fully-formed values with fresh ids; callers insert them into state
// as-is.
type Generator interface {
	// GenerateQuest builds a complete quest with scaffolded tasks.
	GenerateQuest(ctx context.Context, req QuestRequest) (hub.Quest, error)

	// GenerateTask builds one task, prefilled per its content type.
	GenerateTask(ctx context.Context, req TaskRequest) (hub.Task, error)

	// GenerateLesson writes the markdown body for a lesson task.
	GenerateLesson(ctx context.Context, questTitle string, task hub.Task) (string, error)

	// GenerateQuiz builds multiple-choice questions for a task.
	GenerateQuiz(ctx context.Context, questTitle string, task hub.Task) ([]hub.QuizQuestion, error)

	// GenerateFlashcards builds recall cards for a task.
	GenerateFlashcards(ctx context.Context, questTitle string, task hub.Task) ([]hub.Flashcard, error)

	// GenerateSlides builds a presentation deck for a task.
	GenerateSlides(ctx context.Context, questTitle string, task hub.Task) ([]hub.Slide, error)

	// GenerateSimulation writes a self-contained HTML document for a
	// game task.
	GenerateSimulation(ctx context.Context, questTitle string, task hub.Task) (string, error)

	// GenerateDailyChallenge builds the once-per-day bonus quest.
	GenerateDailyChallenge(ctx context.Context) (hub.Quest, error)

	// TutorReply answers one student question in the given persona.
	TutorReply(ctx context.Context, req TutorRequest) (string, error)
}
