package content

import (
	"context"

	"github.com/questhub/questhub/internal/hub"
)

// MockGenerator is a test double. Zero-value methods delegate to the
// demo generator; set Err to force every call to fail.
type MockGenerator struct {
	Err   error
	Quest hub.Quest // returned by GenerateQuest when set
	Reply string    // returned by TutorReply when set

	Calls []string // method names in call order
	demo  DemoGenerator
}

func (m *MockGenerator) GenerateQuest(ctx context.Context, req QuestRequest) (hub.Quest, error) {
	m.Calls = append(m.Calls, "GenerateQuest")
	if m.Err != nil {
		return hub.Quest{}, m.Err
	}
	if m.Quest.ID != "" {
		return m.Quest, nil
	}
	return m.demo.GenerateQuest(ctx, req)
}

func (m *MockGenerator) GenerateTask(ctx context.Context, req TaskRequest) (hub.Task, error) {
	m.Calls = append(m.Calls, "GenerateTask")
	if m.Err != nil {
		return hub.Task{}, m.Err
	}
	return m.demo.GenerateTask(ctx, req)
}

func (m *MockGenerator) GenerateLesson(ctx context.Context, questTitle string, task hub.Task) (string, error) {
	m.Calls = append(m.Calls, "GenerateLesson")
	if m.Err != nil {
		return "", m.Err
	}
	return m.demo.GenerateLesson(ctx, questTitle, task)
}

func (m *MockGenerator) GenerateQuiz(ctx context.Context, questTitle string, task hub.Task) ([]hub.QuizQuestion, error) {
	m.Calls = append(m.Calls, "GenerateQuiz")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.demo.GenerateQuiz(ctx, questTitle, task)
}

func (m *MockGenerator) GenerateFlashcards(ctx context.Context, questTitle string, task hub.Task) ([]hub.Flashcard, error) {
	m.Calls = append(m.Calls, "GenerateFlashcards")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.demo.GenerateFlashcards(ctx, questTitle, task)
}

func (m *MockGenerator) GenerateSlides(ctx context.Context, questTitle string, task hub.Task) ([]hub.Slide, error) {
	m.Calls = append(m.Calls, "GenerateSlides")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.demo.GenerateSlides(ctx, questTitle, task)
}

func (m *MockGenerator) GenerateSimulation(ctx context.Context, questTitle string, task hub.Task) (string, error) {
	m.Calls = append(m.Calls, "GenerateSimulation")
	if m.Err != nil {
		return "", m.Err
	}
	return m.demo.GenerateSimulation(ctx, questTitle, task)
}

func (m *MockGenerator) GenerateDailyChallenge(ctx context.Context) (hub.Quest, error) {
	m.Calls = append(m.Calls, "GenerateDailyChallenge")
	if m.Err != nil {
		return hub.Quest{}, m.Err
	}
	return m.demo.GenerateDailyChallenge(ctx)
}

func (m *MockGenerator) TutorReply(ctx context.Context, req TutorRequest) (string, error) {
	m.Calls = append(m.Calls, "TutorReply")
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return m.demo.TutorReply(ctx, req)
}
