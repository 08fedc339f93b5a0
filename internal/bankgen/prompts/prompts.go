package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var Templates embed.FS

var tagRegex = regexp.MustCompile(`(?i)</?\s*(topic|system-instructions)\b[^>]*>`)

const maxTopicRunes = 200

// Style selects how demanding the generated questions are.
type Style string

const (
	// StyleCasual targets players new to the topic.
	StyleCasual Style = "casual"
	// StyleStandard is the default style.
	StyleStandard Style = "standard"
	// StyleExpert targets players who know the topic well.
	StyleExpert Style = "expert"
)

var validStyles = map[Style]bool{
	StyleCasual:   true,
	StyleStandard: true,
	StyleExpert:   true,
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Style]*template.Template
)

// IsValidStyle checks if a style name is valid.
func IsValidStyle(s string) bool {
	return validStyles[Style(s)]
}

// GenerateData holds template data for bank generation prompts.
type GenerateData struct {
	Topic       string
	Language    string
	Choice      int
	TrueFalse   int
	MultiSelect bool
}

// Load parses the generation templates from fsys, once per process.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		templates = make(map[Style]*template.Template)
		for _, s := range []Style{StyleCasual, StyleStandard, StyleExpert} {
			name := "templates/generate_" + string(s) + ".txt"
			content, err := fs.ReadFile(fsys, name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New(string(s)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			templates[s] = tmpl
		}
	})
	return loadErr
}

// BuildGeneratePrompt renders the system prompt asking for a bank on data.Topic.
func BuildGeneratePrompt(style Style, data GenerateData) (string, error) {
	if templates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := templates[style]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("invalid prompt style: " + string(style))
	}

	data.Topic = sanitizeTopic(data.Topic)
	if data.Language == "" {
		data.Language = "English"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeTopic(topic string) string {
	topic = tagRegex.ReplaceAllString(topic, "")
	topic = strings.Join(strings.Fields(topic), " ")
	if topic == "" {
		return "general knowledge"
	}
	if utf8.RuneCountInString(topic) > maxTopicRunes {
		topic = string([]rune(topic)[:maxTopicRunes])
	}
	return topic
}
