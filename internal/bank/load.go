package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/spacequiz/internal/model"
)

// File is the on-disk bank format shared by JSON and YAML files.
type File struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Questions   struct {
		MultipleChoice []ChoiceItem    `json:"multipleChoice" yaml:"multipleChoice"`
		TrueFalse      []TrueFalseItem `json:"trueFalse" yaml:"trueFalse"`
	} `json:"questions" yaml:"questions"`
}

// ChoiceItem is a single-choice item, or a multi-select item when Type is "multiSelect".
type ChoiceItem struct {
	Type           string   `json:"type,omitempty" yaml:"type,omitempty"`
	Question       string   `json:"question" yaml:"question"`
	Options        []string `json:"options" yaml:"options"`
	CorrectAnswer  string   `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`
	CorrectAnswers []string `json:"correctAnswers,omitempty" yaml:"correctAnswers,omitempty"`
}

// TrueFalseItem is a true/false item.
type TrueFalseItem struct {
	Question      string      `json:"question" yaml:"question"`
	CorrectAnswer *BoolAnswer `json:"correctAnswer" yaml:"correctAnswer"`
}

// BoolAnswer accepts true/false as booleans or as "TRUE"/"FALSE" strings.
type BoolAnswer bool

func (b *BoolAnswer) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = BoolAnswer(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("correctAnswer must be a boolean or TRUE/FALSE")
	}
	return b.set(s)
}

func (b *BoolAnswer) UnmarshalYAML(value *yaml.Node) error {
	var v bool
	if err := value.Decode(&v); err == nil {
		*b = BoolAnswer(v)
		return nil
	}
	return b.set(value.Value)
}

func (b BoolAnswer) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(model.BoolLabel(bool(b))))
}

func (b *BoolAnswer) set(s string) error {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "T", "YES":
		*b = true
	case "FALSE", "F", "NO":
		*b = false
	default:
		return fmt.Errorf("correctAnswer %q is not TRUE or FALSE", s)
	}
	return nil
}

// LoadFile reads, parses and validates a bank file.
func LoadFile(path string) (model.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Bank{}, fmt.Errorf("read bank: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes bank data by file extension and validates it.
// The bank ID is the file name without extension.
func Parse(data []byte, path string) (model.Bank, error) {
	return ParseAs(data, path, IDFromPath(path))
}

// ParseAs is Parse with an explicit bank ID. path only selects the format.
func ParseAs(data []byte, path, id string) (model.Bank, error) {
	file, err := parseFile(data, path)
	if err != nil {
		return model.Bank{}, err
	}
	return Normalize(id, file)
}

// IDFromPath derives a bank ID from a file name.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseFile(data []byte, path string) (File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) (File, error) {
	var f File
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return File{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return File{}, fmt.Errorf("parse json: %w", err)
	}
	return f, nil
}

func parseYAML(data []byte) (File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return File{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return File{}, fmt.Errorf("parse yaml: %w", err)
	}
	return f, nil
}

// FindFiles expands directories into the bank files they contain.
// index.json, the legacy bank listing, is skipped.
func FindFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || e.Name() == "index.json" {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".json", ".yaml", ".yml":
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
