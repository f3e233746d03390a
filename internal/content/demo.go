package content

import (
	"context"
	"fmt"
	"time"

	"github.com/questhub/questhub/internal/hub"
)

// DemoGenerator serves canned content. It backs the app when no API key
// is configured and acts as the fallback when live generation fails, so
// every operation always produces something usable.
type DemoGenerator struct{}

// NewDemoGenerator creates a demo content generator.
func NewDemoGenerator() *DemoGenerator {
	return &DemoGenerator{}
}

const unavailableHTML = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: 'Inter', sans-serif; background: #0f172a; color: white; display: flex; flex-direction: column; align-items: center; justify-content: center; height: 100vh; margin: 0; }
  .card { background: #1e293b; padding: 40px; border-radius: 16px; text-align: center; border: 1px solid #334155; }
  h1 { color: #f59e0b; }
  p { color: #94a3b8; }
</style>
</head>
<body>
  <div class="card">
    <h1>Simulation Unavailable</h1>
    <p>Live generation is offline. Ask your teacher to configure an API key, then regenerate this activity.</p>
  </div>
</body>
</html>`

func (d *DemoGenerator) GenerateQuest(_ context.Context, req QuestRequest) (hub.Quest, error) {
	topic := req.Topic
	if topic == "" {
		topic = "Number Sense"
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = hub.DifficultyIntermediate
	}

	quest := hub.Quest{
		ID:          hub.NewID(),
		Title:       fmt.Sprintf("Explorer's Guide to %s", topic),
		Description: fmt.Sprintf("A ready-made offline quest covering the essentials of %s.", topic),
		Category:    topic,
		Difficulty:  difficulty,
		CreatedAt:   time.Now(),
		Status:      hub.QuestActive,
		YearID:      req.YearID,
		Tasks: []hub.Task{
			demoTask(fmt.Sprintf("Introduction to %s", topic), hub.TypeLesson, 50),
			demoTask("Core Concepts", hub.TypeLesson, 50),
			demoTask("Checkpoint Quiz", hub.TypeQuiz, 75),
			demoTask("Hands-On Challenge", hub.TypeGame, 100),
			demoTask("Wrap-Up Review", hub.TypeLesson, 50),
		},
	}
	quest.TotalXP, quest.EarnedXP = hub.SumTaskXP(quest.Tasks)
	return quest, nil
}

func (d *DemoGenerator) GenerateTask(_ context.Context, req TaskRequest) (hub.Task, error) {
	xp := 50
	switch req.Type {
	case hub.TypeQuiz:
		xp = 75
	case hub.TypeGame:
		xp = 100
	case hub.TypeProject:
		xp = 150
	}
	title := req.TaskTitle
	if title == "" {
		title = "New Activity"
	}
	return demoTask(title, req.Type, xp), nil
}

func (d *DemoGenerator) GenerateLesson(_ context.Context, questTitle string, task hub.Task) (string, error) {
	return fmt.Sprintf(`# %s

Welcome to this lesson from **%s**.

## The Big Idea

Every new skill in math builds on one you already have. Today's topic is no
different: start from what you know, take one small step, and check your work.

## Worked Example

1. Read the problem twice before touching your pencil.
2. Write down what you know and what you need to find.
3. Solve one step at a time, checking each step.

## Try It

1. Explain this topic to a classmate in your own words.
2. Make up an example problem and solve it.
3. Find one place outside school where this idea shows up.
`, task.Title, questTitle), nil
}

func (d *DemoGenerator) GenerateQuiz(_ context.Context, _ string, task hub.Task) ([]hub.QuizQuestion, error) {
	return []hub.QuizQuestion{
		{
			ID:           hub.NewID(),
			Question:     fmt.Sprintf("What is the first step when tackling a problem about %s?", task.Title),
			Options:      []string{"Guess an answer", "Read the problem carefully", "Skip it", "Ask for the answer"},
			CorrectIndex: 1,
			Explanation:  "Understanding the problem always comes before solving it.",
		},
		{
			ID:           hub.NewID(),
			Question:     "After solving, what should you always do?",
			Options:      []string{"Move on immediately", "Erase your work", "Check your answer", "Change your answer"},
			CorrectIndex: 2,
			Explanation:  "Checking catches small slips before they become wrong answers.",
		},
		{
			ID:           hub.NewID(),
			Question:     "Which habit helps most when a problem looks hard?",
			Options:      []string{"Breaking it into smaller steps", "Working faster", "Memorizing the answer", "Skipping the hard part"},
			CorrectIndex: 0,
			Explanation:  "Small steps turn hard problems into a chain of easy ones.",
		},
	}, nil
}

func (d *DemoGenerator) GenerateFlashcards(_ context.Context, _ string, task hub.Task) ([]hub.Flashcard, error) {
	return []hub.Flashcard{
		{ID: hub.NewID(), Front: task.Title, Back: "The key idea of this activity. Review the lesson for details."},
		{ID: hub.NewID(), Front: "First step of problem solving", Back: "Understand the problem before solving it."},
		{ID: hub.NewID(), Front: "Last step of problem solving", Back: "Check the answer against the question."},
		{ID: hub.NewID(), Front: "What to do when stuck", Back: "Break the problem into smaller pieces."},
	}, nil
}

func (d *DemoGenerator) GenerateSlides(_ context.Context, questTitle string, task hub.Task) ([]hub.Slide, error) {
	return []hub.Slide{
		{ID: hub.NewID(), Title: task.Title, Content: []string{"Part of " + questTitle}, VisualKeyword: "mathematics", Layout: "center"},
		{ID: hub.NewID(), Title: "The Big Idea", Content: []string{"Build on what you know", "One small step at a time"}, VisualKeyword: "staircase", Layout: "split"},
		{ID: hub.NewID(), Title: "3", Content: []string{"steps: understand, solve, check"}, VisualKeyword: "checklist", Layout: "big-number"},
		{ID: hub.NewID(), Title: "Your Turn", Content: []string{"Try the practice problems", "Explain your reasoning out loud"}, VisualKeyword: "student", Layout: "center"},
	}, nil
}

func (d *DemoGenerator) GenerateSimulation(_ context.Context, _ string, _ hub.Task) (string, error) {
	return unavailableHTML, nil
}

func (d *DemoGenerator) GenerateDailyChallenge(_ context.Context) (hub.Quest, error) {
	quest := hub.Quest{
		ID:          hub.NewID(),
		Title:       "Daily Challenge: Mental Math Sprint",
		Description: "Three quick wins to keep your streak alive.",
		Category:    "Daily Challenge",
		Difficulty:  hub.DifficultyIntermediate,
		CreatedAt:   time.Now(),
		Status:      hub.QuestActive,
		Tasks: []hub.Task{
			demoTask("Warm-Up: Number Patterns", hub.TypeLesson, 50),
			demoTask("Speed Round Quiz", hub.TypeQuiz, 75),
			demoTask("Estimation Game", hub.TypeGame, 100),
		},
	}
	quest.TotalXP, quest.EarnedXP = hub.SumTaskXP(quest.Tasks)
	return quest, nil
}

var demoReplies = map[string]string{
	PersonaSocratic:    "Interesting question. What do you already know that might apply here?",
	PersonaEncouraging: "Great question! You're closer than you think. Try the first step and tell me what you get.",
	PersonaRoast:       "Bold of you to ask before trying it yourself. Go on, give it a shot, then we'll fix it together.",
	PersonaELI5:        "Imagine you're sharing cookies with friends. Math questions like this are just fair-sharing puzzles.",
}

func (d *DemoGenerator) TutorReply(_ context.Context, req TutorRequest) (string, error) {
	reply, ok := demoReplies[req.Persona]
	if !ok {
		reply = demoReplies[PersonaEncouraging]
	}
	return reply, nil
}

func demoTask(title string, typ hub.ContentType, xp int) hub.Task {
	return hub.Task{
		ID:          hub.NewID(),
		Title:       title,
		Description: "Complete this activity to earn XP.",
		XP:          xp,
		Type:        typ,
	}
}
