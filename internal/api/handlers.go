package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/questhub/questhub/internal/content"
	"github.com/questhub/questhub/internal/hub"
	"github.com/questhub/questhub/internal/progress"
	"github.com/questhub/questhub/internal/roster"
)

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Stats)
}

func (s *Server) handleBadges(w http.ResponseWriter, _ *http.Request) {
	stats := s.store.Snapshot().Stats
	earned := make(map[string]bool, len(stats.EarnedBadges))
	for _, id := range stats.EarnedBadges {
		earned[id] = true
	}

	type badgeView struct {
		progress.Badge
		Earned bool `json:"earned"`
	}
	out := make([]badgeView, 0, len(progress.Catalog))
	for _, b := range progress.Catalog {
		out = append(out, badgeView{Badge: b, Earned: earned[b.ID]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateQuest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic      string `json:"topic"`
		Difficulty string `json:"difficulty"`
		YearID     string `json:"year_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	quest, err := s.generator.GenerateQuest(r.Context(), content.QuestRequest{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		YearID:     req.YearID,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "quest generation failed")
		return
	}

	s.store.UpsertQuest(r.Context(), quest)
	writeJSON(w, http.StatusCreated, quest)
}

func (s *Server) handleDeleteQuest(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteQuest(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	questID := r.PathValue("id")
	quest, ok := s.store.Quest(questID)
	if !ok {
		writeError(w, http.StatusNotFound, "quest not found")
		return
	}

	var req struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	typ := hub.ContentType(req.Type)
	if req.Type != "" && !typ.Valid() {
		writeError(w, http.StatusBadRequest, "unknown task type")
		return
	}
	if req.Type == "" {
		typ = hub.TypeLesson
	}

	task, err := s.generator.GenerateTask(r.Context(), content.TaskRequest{
		QuestTitle: quest.Title,
		TaskTitle:  req.Title,
		Type:       typ,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "task generation failed")
		return
	}

	// Re-read under the write path: the quest may have changed since the
	// generation round trip.
	current, ok := s.store.Quest(questID)
	if !ok {
		writeError(w, http.StatusNotFound, "quest deleted during generation")
		return
	}
	current.Tasks = append(append([]hub.Task(nil), current.Tasks...), task)
	current.TotalXP, current.EarnedXP = hub.SumTaskXP(current.Tasks)
	s.store.UpsertQuest(r.Context(), current)

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	questID := r.PathValue("id")
	taskID := r.PathValue("taskID")

	if _, ok := s.store.Quest(questID); !ok {
		writeError(w, http.StatusNotFound, "quest not found")
		return
	}

	res := s.store.ToggleTask(r.Context(), questID, taskID)
	stats := s.store.Snapshot().Stats
	writeJSON(w, http.StatusOK, map[string]any{
		"quest":    res.Quest,
		"delta":    res.Delta,
		"unlocked": res.Unlocked,
		"stats":    stats,
	})
}

func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	questID := r.PathValue("id")
	taskID := r.PathValue("taskID")

	quest, ok := s.store.Quest(questID)
	if !ok {
		writeError(w, http.StatusNotFound, "quest not found")
		return
	}
	var task hub.Task
	found := false
	for _, t := range quest.Tasks {
		if t.ID == taskID {
			task = t
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req struct {
		Kind string `json:"kind"` // lesson, quiz, flashcards, slides or simulation
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var apply func(hub.Task) hub.Task
	switch req.Kind {
	case "lesson":
		md, err := s.generator.GenerateLesson(r.Context(), quest.Title, task)
		if err != nil {
			writeError(w, http.StatusBadGateway, "lesson generation failed")
			return
		}
		apply = func(t hub.Task) hub.Task { t.MarkdownContent = md; return t }
	case "quiz":
		quiz, err := s.generator.GenerateQuiz(r.Context(), quest.Title, task)
		if err != nil {
			writeError(w, http.StatusBadGateway, "quiz generation failed")
			return
		}
		apply = func(t hub.Task) hub.Task { t.QuizContent = quiz; return t }
	case "flashcards":
		cards, err := s.generator.GenerateFlashcards(r.Context(), quest.Title, task)
		if err != nil {
			writeError(w, http.StatusBadGateway, "flashcard generation failed")
			return
		}
		apply = func(t hub.Task) hub.Task { t.Flashcards = cards; return t }
	case "slides":
		slides, err := s.generator.GenerateSlides(r.Context(), quest.Title, task)
		if err != nil {
			writeError(w, http.StatusBadGateway, "slide generation failed")
			return
		}
		apply = func(t hub.Task) hub.Task { t.Slides = slides; return t }
	case "simulation":
		html, err := s.generator.GenerateSimulation(r.Context(), quest.Title, task)
		if err != nil {
			writeError(w, http.StatusBadGateway, "simulation generation failed")
			return
		}
		apply = func(t hub.Task) hub.Task { t.HTMLContent = html; return t }
	default:
		writeError(w, http.StatusBadRequest, "unknown content kind")
		return
	}

	if !s.store.UpdateTask(r.Context(), questID, taskID, apply) {
		writeError(w, http.StatusConflict, "task removed during generation")
		return
	}
	updated, _ := s.store.Quest(questID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		YearID string `json:"year_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	class := s.store.AddClass(r.Context(), req.Title, req.YearID)
	writeJSON(w, http.StatusCreated, class)
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteClass(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnrollStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	student := s.store.EnrollStudent(r.Context(), req.Name, r.PathValue("id"))
	writeJSON(w, http.StatusCreated, student)
}

// handleImportRoster ingests an XLSX workbook with one student name per
// row and bulk-enrolls into the class.
func (s *Server) handleImportRoster(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("roster")
	if err != nil {
		writeError(w, http.StatusBadRequest, "roster file is required")
		return
	}
	defer file.Close()

	names, err := roster.ParseNames(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot parse workbook")
		return
	}

	created := s.store.EnrollStudentsBulk(r.Context(), names, r.PathValue("id"))
	writeJSON(w, http.StatusCreated, map[string]int{"enrolled": created})
}

func (s *Server) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveStudent(r.Context(), r.PathValue("studentID"), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTutor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Persona  string              `json:"persona"`
		Context  string              `json:"context"`
		History  []content.TutorTurn `json:"history"`
		Question string              `json:"question"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	reply, err := s.generator.TutorReply(r.Context(), content.TutorRequest{
		Persona:  req.Persona,
		Context:  req.Context,
		History:  req.History,
		Question: req.Question,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "tutor unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// handleDailyChallenge serves at most one fresh challenge per calendar
// day: repeat calls on the same day return the existing challenge quest.
func (s *Server) handleDailyChallenge(w http.ResponseWriter, r *http.Request) {
	today := time.Now().Format("2006-01-02")

	if s.tracker != nil && s.tracker.LastChallengeDate(r.Context()) == today {
		for _, q := range s.store.Snapshot().Quests {
			if q.Category == "Daily Challenge" && q.CreatedAt.Format("2006-01-02") == today {
				writeJSON(w, http.StatusOK, map[string]any{"quest": q, "fresh": false})
				return
			}
		}
	}

	quest, err := s.generator.GenerateDailyChallenge(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "challenge generation failed")
		return
	}
	s.store.UpsertQuest(r.Context(), quest)

	if s.tracker != nil {
		if err := s.tracker.SetLastChallengeDate(r.Context(), today); err != nil {
			// Non-fatal: tomorrow's guard just re-serves a challenge.
			writeJSON(w, http.StatusCreated, map[string]any{"quest": quest, "fresh": true})
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"quest": quest, "fresh": true})
}
