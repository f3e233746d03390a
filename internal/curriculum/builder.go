package curriculum

import (
	"fmt"
	"time"

	"github.com/questhub/questhub/internal/hub"
	"github.com/questhub/questhub/internal/progress"
)

// Task XP values by scaffolded type.
const (
	lessonXP  = 50
	gameXP    = 100
	projectXP = 150
)

var demoRoster = []string{
	"Ava Chen",
	"Liam Patel",
	"Sofia Ramirez",
	"Noah Kim",
	"Maya Johnson",
	"Ethan Brooks",
	"Isabella Nguyen",
	"Lucas Wright",
}

// Build converts the seed catalog into a complete initial state: one
// year per grade level, one quest per unit, demo classes with two
// enrolled students each, and fresh user stats.
func (l *Loader) Build() hub.AppData {
	data := hub.AppData{
		Stats: progress.NewUserStats(progress.DefaultThresholds),
	}

	now := time.Now()
	demoIdx := 0
	for yi, spec := range l.catalog.Years {
		year := hub.Year{
			ID:          hub.NewID(),
			Title:       spec.Title,
			Description: spec.Description,
		}
		data.Years = append(data.Years, year)

		for _, unit := range spec.Units {
			quest := l.buildQuest(unit, year, difficultyFor(yi), now)
			data.Quests = append(data.Quests, quest)
		}

		if spec.DemoClass {
			class := hub.ClassGroup{
				ID:     hub.NewID(),
				Title:  fmt.Sprintf("%s - Section A", spec.Title),
				YearID: year.ID,
			}
			for range 2 {
				name := demoRoster[demoIdx%len(demoRoster)]
				demoIdx++
				data.Students, _ = hub.EnrollStudent(data.Students, nil, name, "", "")
				class.StudentIDs = append(class.StudentIDs, data.Students[len(data.Students)-1].ID)
			}
			data.Classes = append(data.Classes, class)
		}
	}

	return data
}

func (l *Loader) buildQuest(unit UnitSpec, year hub.Year, difficulty string, createdAt time.Time) hub.Quest {
	quest := hub.Quest{
		ID:          hub.NewID(),
		Title:       unit.Title,
		Description: fmt.Sprintf("Work through %s.", unit.Title),
		Category:    year.Title,
		Difficulty:  difficulty,
		CreatedAt:   createdAt,
		Status:      hub.QuestActive,
		YearID:      year.ID,
	}

	for i, lesson := range unit.Lessons {
		quest.Tasks = append(quest.Tasks, l.buildTask(lesson, i))
	}
	quest.TotalXP, quest.EarnedXP = hub.SumTaskXP(quest.Tasks)
	return quest
}

// buildTask applies the scaffolding rules. An explicit type in the seed
// entry wins; otherwise every 5th lesson becomes a mini-project, every
// 3rd an activity, and the rest stay plain lessons.
func (l *Loader) buildTask(lesson LessonSpec, idx int) hub.Task {
	task := hub.Task{
		ID:          hub.NewID(),
		Title:       lesson.Title,
		Description: fmt.Sprintf("Complete the %s activity.", lesson.Title),
		Type:        hub.TypeLesson,
		XP:          lessonXP,
	}

	switch {
	case lesson.Type != "":
		task.Type = hub.ContentType(lesson.Type)
		switch task.Type {
		case hub.TypeGame:
			task.XP = gameXP
		case hub.TypeProject:
			task.XP = projectXP
		}
	case (idx+1)%5 == 0:
		task.Type = hub.TypeProject
		task.XP = projectXP
		task.Title += " (Mini-Project)"
	case (idx+1)%3 == 0:
		task.Type = hub.TypeGame
		task.XP = gameXP
		task.Title += " (Activity)"
	}

	if lesson.Game != "" {
		if html, ok := l.games[lesson.Game]; ok {
			task.HTMLContent = html
		}
	}
	return task
}

func difficultyFor(yearIdx int) string {
	switch {
	case yearIdx < 6:
		return hub.DifficultyBeginner
	case yearIdx < 9:
		return hub.DifficultyIntermediate
	default:
		return hub.DifficultyAdvanced
	}
}
