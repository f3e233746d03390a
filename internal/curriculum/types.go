package curriculum

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Catalog is the root of a seed curriculum document.
type Catalog struct {
	Years []YearSpec `yaml:"years"`
}

// YearSpec is one grade level in the seed curriculum.
type YearSpec struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	DemoClass   bool       `yaml:"demo_class"`
	Units       []UnitSpec `yaml:"units"`
}

// UnitSpec groups an ordered list of lessons under one topic.
type UnitSpec struct {
	Title   string       `yaml:"title"`
	Lessons []LessonSpec `yaml:"lessons"`
}

// LessonSpec is a single entry in a unit's lesson list. In YAML it is
// either a bare string (the lesson title) or a mapping that pins a
// content type and may reference an embedded game asset.
type LessonSpec struct {
	Title string `yaml:"title"`
	Type  string `yaml:"type"`
	Game  string `yaml:"game"`
}

// UnmarshalYAML accepts both the scalar and the mapping forms.
func (l *LessonSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		l.Title = node.Value
		return nil
	}

	type plain LessonSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Title == "" {
		return fmt.Errorf("lesson entry at line %d has no title", node.Line)
	}
	*l = LessonSpec(p)
	return nil
}
