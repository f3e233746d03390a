package content

import (
	"context"
	"log/slog"

	"github.com/questhub/questhub/internal/hub"
)

// FallbackGenerator tries the primary generator and serves demo content
// when it fails. Generation failures degrade, they never surface to the
// student.
type FallbackGenerator struct {
	primary  Generator
	fallback Generator
}

// NewFallbackGenerator wraps primary with a demo fallback.
func NewFallbackGenerator(primary, fallback Generator) *FallbackGenerator {
	return &FallbackGenerator{primary: primary, fallback: fallback}
}

func (f *FallbackGenerator) GenerateQuest(ctx context.Context, req QuestRequest) (hub.Quest, error) {
	quest, err := f.primary.GenerateQuest(ctx, req)
	if err != nil {
		slog.Warn("quest generation failed, serving demo content", "topic", req.Topic, "error", err)
		return f.fallback.GenerateQuest(ctx, req)
	}
	return quest, nil
}

func (f *FallbackGenerator) GenerateTask(ctx context.Context, req TaskRequest) (hub.Task, error) {
	task, err := f.primary.GenerateTask(ctx, req)
	if err != nil {
		slog.Warn("task generation failed, serving demo content", "task", req.TaskTitle, "error", err)
		return f.fallback.GenerateTask(ctx, req)
	}
	return task, nil
}

func (f *FallbackGenerator) GenerateLesson(ctx context.Context, questTitle string, task hub.Task) (string, error) {
	md, err := f.primary.GenerateLesson(ctx, questTitle, task)
	if err != nil {
		slog.Warn("lesson generation failed, serving demo content", "task", task.Title, "error", err)
		return f.fallback.GenerateLesson(ctx, questTitle, task)
	}
	return md, nil
}

func (f *FallbackGenerator) GenerateQuiz(ctx context.Context, questTitle string, task hub.Task) ([]hub.QuizQuestion, error) {
	quiz, err := f.primary.GenerateQuiz(ctx, questTitle, task)
	if err != nil {
		slog.Warn("quiz generation failed, serving demo content", "task", task.Title, "error", err)
		return f.fallback.GenerateQuiz(ctx, questTitle, task)
	}
	return quiz, nil
}

func (f *FallbackGenerator) GenerateFlashcards(ctx context.Context, questTitle string, task hub.Task) ([]hub.Flashcard, error) {
	cards, err := f.primary.GenerateFlashcards(ctx, questTitle, task)
	if err != nil {
		slog.Warn("flashcard generation failed, serving demo content", "task", task.Title, "error", err)
		return f.fallback.GenerateFlashcards(ctx, questTitle, task)
	}
	return cards, nil
}

func (f *FallbackGenerator) GenerateSlides(ctx context.Context, questTitle string, task hub.Task) ([]hub.Slide, error) {
	slides, err := f.primary.GenerateSlides(ctx, questTitle, task)
	if err != nil {
		slog.Warn("slide generation failed, serving demo content", "task", task.Title, "error", err)
		return f.fallback.GenerateSlides(ctx, questTitle, task)
	}
	return slides, nil
}

func (f *FallbackGenerator) GenerateSimulation(ctx context.Context, questTitle string, task hub.Task) (string, error) {
	html, err := f.primary.GenerateSimulation(ctx, questTitle, task)
	if err != nil {
		slog.Warn("simulation generation failed, serving placeholder", "task", task.Title, "error", err)
		return f.fallback.GenerateSimulation(ctx, questTitle, task)
	}
	return html, nil
}

func (f *FallbackGenerator) GenerateDailyChallenge(ctx context.Context) (hub.Quest, error) {
	quest, err := f.primary.GenerateDailyChallenge(ctx)
	if err != nil {
		slog.Warn("daily challenge generation failed, serving demo content", "error", err)
		return f.fallback.GenerateDailyChallenge(ctx)
	}
	return quest, nil
}

func (f *FallbackGenerator) TutorReply(ctx context.Context, req TutorRequest) (string, error) {
	reply, err := f.primary.TutorReply(ctx, req)
	if err != nil {
		slog.Warn("tutor reply failed, serving canned reply", "persona", req.Persona, "error", err)
		return f.fallback.TutorReply(ctx, req)
	}
	return reply, nil
}
