package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/questhub/questhub/internal/api"
	"github.com/questhub/questhub/internal/content"
	"github.com/questhub/questhub/internal/hub"
	"github.com/questhub/questhub/internal/persist"
	"github.com/questhub/questhub/internal/progress"
)

func seedData() hub.AppData {
	quest := hub.Quest{
		ID:     "q1",
		Title:  "Unit 1: Fractions",
		Status: hub.QuestActive,
		YearID: "y1",
		Tasks: []hub.Task{
			{ID: "t1", Title: "Intro", Type: hub.TypeLesson, XP: 50},
			{ID: "t2", Title: "Builder", Type: hub.TypeGame, XP: 100},
		},
	}
	quest.TotalXP, quest.EarnedXP = hub.SumTaskXP(quest.Tasks)
	return hub.AppData{
		Quests:  []hub.Quest{quest},
		Years:   []hub.Year{{ID: "y1", Title: "Grade 3"}},
		Classes: []hub.ClassGroup{{ID: "c1", Title: "Grade 3 - Section A", YearID: "y1", StudentIDs: []string{}}},
		Stats:   progress.NewUserStats(progress.DefaultThresholds),
	}
}

func newTestServer(t *testing.T, gen content.Generator) (*httptest.Server, *hub.Store) {
	t.Helper()
	if gen == nil {
		gen = content.NewDemoGenerator()
	}
	store := hub.NewStore(seedData())
	tracker := persist.NewAdapter(persist.NewMemoryStore())
	srv := httptest.NewServer(api.NewServer(store, gen, tracker).Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	blob, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGetState(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	var state hub.AppData
	decodeBody(t, resp, &state)

	if len(state.Quests) != 1 || state.Quests[0].ID != "q1" {
		t.Errorf("Quests = %v, want seed quest", state.Quests)
	}
	if state.Stats.Level != 1 {
		t.Errorf("Stats.Level = %d, want 1", state.Stats.Level)
	}
}

func TestCreateQuest(t *testing.T) {
	srv, store := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/quests", map[string]string{
		"topic":      "Decimals",
		"difficulty": hub.DifficultyBeginner,
		"year_id":    "y1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var quest hub.Quest
	decodeBody(t, resp, &quest)

	snap := store.Snapshot()
	if len(snap.Quests) != 2 {
		t.Fatalf("len(Quests) = %d, want 2", len(snap.Quests))
	}
	if snap.Quests[0].ID != quest.ID {
		t.Error("new quest not prepended")
	}
}

func TestCreateQuest_MissingTopic(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/quests", map[string]string{"topic": "  "})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestToggleTask(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/quests/q1/tasks/t2/toggle", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Delta int                `json:"delta"`
		Stats progress.UserStats `json:"stats"`
		Quest hub.Quest          `json:"quest"`
	}
	decodeBody(t, resp, &out)

	if out.Delta != 100 {
		t.Errorf("delta = %d, want 100", out.Delta)
	}
	if out.Stats.CurrentXP != 100 {
		t.Errorf("stats.current_xp = %d, want 100", out.Stats.CurrentXP)
	}
	if out.Quest.EarnedXP != 100 {
		t.Errorf("quest.earned_xp = %d, want 100", out.Quest.EarnedXP)
	}
}

func TestToggleTask_UnknownQuest(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/quests/nope/tasks/t1/toggle", struct{}{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGenerateContent_Lesson(t *testing.T) {
	srv, store := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/quests/q1/tasks/t1/content", map[string]string{"kind": "lesson"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	quest, _ := store.Quest("q1")
	if quest.Tasks[0].MarkdownContent == "" {
		t.Error("lesson markdown not attached")
	}
}

func TestGenerateContent_UnknownKind(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/quests/q1/tasks/t1/content", map[string]string{"kind": "opera"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEnrollStudent(t *testing.T) {
	srv, store := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/classes/c1/students", map[string]string{"name": "Jane Doe"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var student hub.Student
	decodeBody(t, resp, &student)

	if student.Email != "jane.doe@school.edu" {
		t.Errorf("email = %q, want jane.doe@school.edu", student.Email)
	}
	snap := store.Snapshot()
	if len(snap.Classes[0].StudentIDs) != 1 {
		t.Errorf("roster size = %d, want 1", len(snap.Classes[0].StudentIDs))
	}
}

func TestImportRoster(t *testing.T) {
	srv, store := newTestServer(t, nil)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, name := range []string{"Name", "Ana Silva", "Bo Li", ""} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetCellValue(sheet, cell, name)
	}
	var workbook bytes.Buffer
	if err := f.Write(&workbook); err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("roster", "roster.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(workbook.Bytes())
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/classes/c1/students/import", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST import: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var out map[string]int
	decodeBody(t, resp, &out)

	if out["enrolled"] != 2 {
		t.Errorf("enrolled = %d, want 2", out["enrolled"])
	}
	if got := len(store.Snapshot().Students); got != 2 {
		t.Errorf("students = %d, want 2", got)
	}
}

func TestTutor(t *testing.T) {
	gen := &content.MockGenerator{Reply: "Try factoring first."}
	srv, _ := newTestServer(t, gen)

	resp := postJSON(t, srv.URL+"/api/tutor", map[string]any{
		"persona":  content.PersonaSocratic,
		"question": "How do I solve x^2-4=0?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	decodeBody(t, resp, &out)
	if out["reply"] != "Try factoring first." {
		t.Errorf("reply = %q, want mock reply", out["reply"])
	}
}

func TestDailyChallenge_OncePerDay(t *testing.T) {
	srv, store := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/daily-challenge", struct{}{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first call status = %d, want 201", resp.StatusCode)
	}
	var first struct {
		Fresh bool      `json:"fresh"`
		Quest hub.Quest `json:"quest"`
	}
	decodeBody(t, resp, &first)
	if !first.Fresh {
		t.Error("first call should be fresh")
	}

	resp = postJSON(t, srv.URL+"/api/daily-challenge", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second call status = %d, want 200", resp.StatusCode)
	}
	var second struct {
		Fresh bool      `json:"fresh"`
		Quest hub.Quest `json:"quest"`
	}
	decodeBody(t, resp, &second)
	if second.Fresh {
		t.Error("second call on the same day should reuse the challenge")
	}
	if second.Quest.ID != first.Quest.ID {
		t.Errorf("second quest id = %q, want the first challenge %q", second.Quest.ID, first.Quest.ID)
	}

	count := 0
	for _, q := range store.Snapshot().Quests {
		if q.Category == "Daily Challenge" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("daily challenge quests = %d, want 1", count)
	}
}

func TestDeleteQuest(t *testing.T) {
	srv, store := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/quests/q1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := len(store.Snapshot().Quests); got != 0 {
		t.Errorf("quests = %d, want 0", got)
	}
}

func TestBadges(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/badges")
	if err != nil {
		t.Fatalf("GET /api/badges: %v", err)
	}
	var badges []struct {
		ID     string `json:"id"`
		Earned bool   `json:"earned"`
	}
	decodeBody(t, resp, &badges)

	if len(badges) != len(progress.Catalog) {
		t.Fatalf("badges = %d, want %d", len(badges), len(progress.Catalog))
	}
	for _, b := range badges {
		if b.Earned {
			t.Errorf("badge %q earned on fresh state", b.ID)
		}
	}
}

func TestAddTask(t *testing.T) {
	srv, store := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/quests/q1/tasks", map[string]string{
		"title": "Bonus Round",
		"type":  string(hub.TypeQuiz),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	quest, _ := store.Quest("q1")
	if len(quest.Tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(quest.Tasks))
	}
	total, _ := hub.SumTaskXP(quest.Tasks)
	if quest.TotalXP != total {
		t.Errorf("TotalXP = %d, want recomputed %d", quest.TotalXP, total)
	}
}
