package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/questhub/questhub/internal/hub"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// GeminiGenerator implements Generator against the Google Gemini API.
type GeminiGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// GeminiOption configures a GeminiGenerator.
type GeminiOption func(*GeminiGenerator)

// WithGeminiBaseURL sets the base URL (for testing).
func WithGeminiBaseURL(url string) GeminiOption {
	return func(g *GeminiGenerator) {
		g.baseURL = url
	}
}

// WithGeminiModel overrides the default model.
func WithGeminiModel(model string) GeminiOption {
	return func(g *GeminiGenerator) {
		g.model = model
	}
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(g *GeminiGenerator) {
		g.client = client
	}
}

// NewGeminiGenerator creates a Gemini-backed content generator.
func NewGeminiGenerator(apiKey string, opts ...GeminiOption) *GeminiGenerator {
	g := &GeminiGenerator{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		model:   defaultGeminiModel,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// geminiRequest is the request body for the Gemini generateContent API.
type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiGenerator) generate(ctx context.Context, req geminiRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return gemResp.Candidates[0].Content.Parts[0].Text, nil
}

// generateJSON runs one prompt in JSON response mode and validates the
// output against the given schema before returning it.
func (g *GeminiGenerator) generateJSON(ctx context.Context, prompt, schema string, v any) error {
	text, err := g.generate(ctx, geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   json.RawMessage(schema),
		},
	})
	if err != nil {
		return err
	}
	return decodeValidated([]byte(stripFences(text)), schema, v)
}

func (g *GeminiGenerator) generateText(ctx context.Context, system, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	return g.generate(ctx, req)
}

func (g *GeminiGenerator) GenerateQuest(ctx context.Context, req QuestRequest) (hub.Quest, error) {
	prompt := fmt.Sprintf(`Design a learning quest about %q at %s difficulty for a math student.
Produce 4 to 6 tasks. Mix types: mostly "Lesson" (50 xp), with one "Game" (100 xp) and one "Project" (150 xp).
Return JSON with title, description, category and the tasks array.`, req.Topic, req.Difficulty)

	var payload questPayload
	if err := g.generateJSON(ctx, prompt, questSchema, &payload); err != nil {
		return hub.Quest{}, fmt.Errorf("generating quest: %w", err)
	}
	return questFromPayload(payload, req), nil
}

func (g *GeminiGenerator) GenerateTask(ctx context.Context, req TaskRequest) (hub.Task, error) {
	prompt := fmt.Sprintf(`Design one learning task titled %q of type %q for the quest %q.
Suggest an appropriate xp value (Lesson 50, Practice 50, Quiz 75, Game 100, Project 150).
Return JSON with title, description, type and xp.`, req.TaskTitle, req.Type, req.QuestTitle)

	var payload taskPayload
	if err := g.generateJSON(ctx, prompt, taskSchema, &payload); err != nil {
		return hub.Task{}, fmt.Errorf("generating task: %w", err)
	}
	return taskFromPayload(payload), nil
}

func (g *GeminiGenerator) GenerateLesson(ctx context.Context, questTitle string, task hub.Task) (string, error) {
	prompt := fmt.Sprintf(`Write a complete markdown lesson for %q (part of the unit %q).
Structure: a short hook, the core explanation with worked examples, and a "Try It" section with 3 practice problems.
Return only the markdown body.`, task.Title, questTitle)

	text, err := g.generateText(ctx, "You are a math teacher writing clear, friendly lessons.", prompt)
	if err != nil {
		return "", fmt.Errorf("generating lesson: %w", err)
	}
	return stripFences(text), nil
}

func (g *GeminiGenerator) GenerateQuiz(ctx context.Context, questTitle string, task hub.Task) ([]hub.QuizQuestion, error) {
	prompt := fmt.Sprintf(`Write 5 multiple-choice questions checking understanding of %q (unit %q).
Each question has 4 options, exactly one correct, with a one-sentence explanation.
Return JSON with a questions array.`, task.Title, questTitle)

	var payload quizPayload
	if err := g.generateJSON(ctx, prompt, quizSchema, &payload); err != nil {
		return nil, fmt.Errorf("generating quiz: %w", err)
	}
	return quizFromPayload(payload)
}

func (g *GeminiGenerator) GenerateFlashcards(ctx context.Context, questTitle string, task hub.Task) ([]hub.Flashcard, error) {
	prompt := fmt.Sprintf(`Write 8 flashcards for %q (unit %q). Front is a term or question, back is the short answer.
Return JSON with a cards array.`, task.Title, questTitle)

	var payload flashcardsPayload
	if err := g.generateJSON(ctx, prompt, flashcardsSchema, &payload); err != nil {
		return nil, fmt.Errorf("generating flashcards: %w", err)
	}
	cards := make([]hub.Flashcard, 0, len(payload.Cards))
	for _, c := range payload.Cards {
		cards = append(cards, hub.Flashcard{ID: hub.NewID(), Front: c.Front, Back: c.Back})
	}
	return cards, nil
}

func (g *GeminiGenerator) GenerateSlides(ctx context.Context, questTitle string, task hub.Task) ([]hub.Slide, error) {
	prompt := fmt.Sprintf(`Design a 6-slide presentation teaching %q (unit %q).
Each slide has a title, 1-4 short content bullets, a single visual_keyword, and a layout of "center", "split" or "big-number".
Return JSON with a slides array.`, task.Title, questTitle)

	var payload slidesPayload
	if err := g.generateJSON(ctx, prompt, slidesSchema, &payload); err != nil {
		return nil, fmt.Errorf("generating slides: %w", err)
	}
	slides := make([]hub.Slide, 0, len(payload.Slides))
	for _, s := range payload.Slides {
		layout := s.Layout
		if layout == "" {
			layout = "center"
		}
		slides = append(slides, hub.Slide{
			ID:            hub.NewID(),
			Title:         s.Title,
			Content:       s.Content,
			VisualKeyword: s.VisualKeyword,
			Layout:        layout,
		})
	}
	return slides, nil
}

func (g *GeminiGenerator) GenerateSimulation(ctx context.Context, questTitle string, task hub.Task) (string, error) {
	prompt := fmt.Sprintf(`Build a single self-contained HTML document (inline CSS and JS, no external resources)
implementing a small interactive math game or simulation for %q (unit %q).
Dark theme, responsive, playable with mouse only. Return only the HTML.`, task.Title, questTitle)

	text, err := g.generateText(ctx, "You write polished single-file HTML games for math class.", prompt)
	if err != nil {
		return "", fmt.Errorf("generating simulation: %w", err)
	}
	html := stripFences(text)
	if !strings.Contains(html, "<html") {
		return "", fmt.Errorf("generating simulation: output is not an HTML document")
	}
	return html, nil
}

func (g *GeminiGenerator) GenerateDailyChallenge(ctx context.Context) (hub.Quest, error) {
	prompt := `Design today's daily challenge: a short bonus quest with exactly 3 quick tasks
(one Lesson, one Quiz, one Game) on a fun math topic. Keep xp modest (50-100 per task).
Return JSON with title, description, category and the tasks array.`

	var payload questPayload
	if err := g.generateJSON(ctx, prompt, questSchema, &payload); err != nil {
		return hub.Quest{}, fmt.Errorf("generating daily challenge: %w", err)
	}
	quest := questFromPayload(payload, QuestRequest{Difficulty: hub.DifficultyIntermediate})
	quest.Category = "Daily Challenge"
	return quest, nil
}

var personaPrompts = map[string]string{
	PersonaSocratic: "You are a Socratic math tutor. Never give the answer directly; " +
		"respond with one guiding question that moves the student a step forward.",
	PersonaEncouraging: "You are a warm, encouraging math tutor. Celebrate effort, " +
		"give hints before answers, and keep replies short.",
	PersonaRoast: "You are a sharp-tongued but good-natured math tutor. Tease the student " +
		"playfully about mistakes, then actually help. Never be cruel.",
	PersonaELI5: "You are a tutor who explains math like the student is five years old, " +
		"with simple words and everyday analogies.",
}

func (g *GeminiGenerator) TutorReply(ctx context.Context, req TutorRequest) (string, error) {
	system, ok := personaPrompts[req.Persona]
	if !ok {
		system = personaPrompts[PersonaEncouraging]
	}
	if req.Context != "" {
		system += "\nThe student is currently working on: " + req.Context
	}

	contents := make([]geminiContent, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := "user"
		if turn.Role == "tutor" {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: turn.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Question}}})

	text, err := g.generate(ctx, geminiRequest{
		Contents:          contents,
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
	})
	if err != nil {
		return "", fmt.Errorf("tutor reply: %w", err)
	}
	return text, nil
}

// questFromPayload assigns fresh ids and recomputes the XP caches.
func questFromPayload(p questPayload, req QuestRequest) hub.Quest {
	quest := hub.Quest{
		ID:          hub.NewID(),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Difficulty:  req.Difficulty,
		CreatedAt:   time.Now(),
		Status:      hub.QuestActive,
		YearID:      req.YearID,
	}
	if quest.Difficulty == "" {
		quest.Difficulty = hub.DifficultyIntermediate
	}
	for _, t := range p.Tasks {
		quest.Tasks = append(quest.Tasks, taskFromPayload(t))
	}
	quest.TotalXP, quest.EarnedXP = hub.SumTaskXP(quest.Tasks)
	return quest
}

func taskFromPayload(p taskPayload) hub.Task {
	typ := hub.ContentType(p.Type)
	if !typ.Valid() {
		typ = hub.TypeLesson
	}
	return hub.Task{
		ID:          hub.NewID(),
		Title:       p.Title,
		Description: p.Description,
		XP:          p.XP,
		Type:        typ,
	}
}

func quizFromPayload(p quizPayload) ([]hub.QuizQuestion, error) {
	questions := make([]hub.QuizQuestion, 0, len(p.Questions))
	for i, q := range p.Questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("question %d: correct_index %d out of range", i, q.CorrectIndex)
		}
		questions = append(questions, hub.QuizQuestion{
			ID:           hub.NewID(),
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		})
	}
	return questions, nil
}
