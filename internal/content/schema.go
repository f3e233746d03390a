package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Wire payloads returned by the model. Ids are assigned locally after
// validation, never trusted from the model.

type questPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Tasks       []taskPayload `json:"tasks"`
}

type taskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	XP          int    `json:"xp"`
}

type quizPayload struct {
	Questions []struct {
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correct_index"`
		Explanation  string   `json:"explanation"`
	} `json:"questions"`
}

type flashcardsPayload struct {
	Cards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"cards"`
}

type slidesPayload struct {
	Slides []struct {
		Title         string   `json:"title"`
		Content       []string `json:"content"`
		VisualKeyword string   `json:"visual_keyword"`
		Layout        string   `json:"layout"`
	} `json:"slides"`
}

const questSchema = `{
	"type": "object",
	"required": ["title", "description", "tasks"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"category": {"type": "string"},
		"tasks": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "type", "xp"],
				"properties": {
					"title": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"type": {"enum": ["Lesson", "Practice", "Project", "Game", "Quiz"]},
					"xp": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`

const taskSchema = `{
	"type": "object",
	"required": ["title", "type", "xp"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"type": {"enum": ["Lesson", "Practice", "Project", "Game", "Quiz"]},
		"xp": {"type": "integer", "minimum": 1}
	}
}`

const quizSchema = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["question", "options", "correct_index"],
				"properties": {
					"question": {"type": "string", "minLength": 1},
					"options": {
						"type": "array",
						"minItems": 2,
						"items": {"type": "string"}
					},
					"correct_index": {"type": "integer", "minimum": 0},
					"explanation": {"type": "string"}
				}
			}
		}
	}
}`

const flashcardsSchema = `{
	"type": "object",
	"required": ["cards"],
	"properties": {
		"cards": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["front", "back"],
				"properties": {
					"front": {"type": "string", "minLength": 1},
					"back": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

const slidesSchema = `{
	"type": "object",
	"required": ["slides"],
	"properties": {
		"slides": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "content"],
				"properties": {
					"title": {"type": "string", "minLength": 1},
					"content": {"type": "array", "items": {"type": "string"}},
					"visual_keyword": {"type": "string"},
					"layout": {"enum": ["center", "split", "big-number", ""]}
				}
			}
		}
	}
}`

// decodeValidated checks raw against the schema and unmarshals into v.
func decodeValidated(raw []byte, schema string, v any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("validating model output: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("model output failed schema check: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal model output: %w", err)
	}
	return nil
}

// stripFences removes a markdown code fence wrapper if the model added
// one despite the JSON response mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
