package bank

import (
	"fmt"
	"strings"

	"github.com/pavelanni/spacequiz/internal/model"
)

const multiSelectType = "multiSelect"

// Issue captures a validation problem in a bank file.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("question bank validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// Normalize trims whitespace, validates a parsed file and converts it to a bank.
// A missing name falls back to the bank ID.
func Normalize(id string, f File) (model.Bank, error) {
	collector := &issueCollector{}
	b := model.Bank{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
	}
	if b.ID == "" {
		collector.add("id", "is required")
	}
	if b.Name == "" {
		b.Name = b.ID
	}

	for i, item := range f.Questions.MultipleChoice {
		prefix := fmt.Sprintf("questions.multipleChoice[%d]", i)
		q, ok := normalizeChoice(prefix, item, collector)
		if ok {
			b.Choice = append(b.Choice, q)
		}
	}
	for i, item := range f.Questions.TrueFalse {
		prefix := fmt.Sprintf("questions.trueFalse[%d]", i)
		prompt := strings.TrimSpace(item.Question)
		if prompt == "" {
			collector.add(prefix+".question", "is required")
			continue
		}
		if item.CorrectAnswer == nil {
			collector.add(prefix+".correctAnswer", "is required")
			continue
		}
		b.TrueFalse = append(b.TrueFalse, model.Question{
			Prompt: prompt,
			Answer: model.TrueFalse{Correct: bool(*item.CorrectAnswer)},
		})
	}

	if err := collector.result(); err != nil {
		return model.Bank{}, err
	}
	return b, nil
}

func normalizeChoice(prefix string, item ChoiceItem, collector *issueCollector) (model.Question, bool) {
	before := len(collector.issues)
	q := model.Question{Prompt: strings.TrimSpace(item.Question)}
	if q.Prompt == "" {
		collector.add(prefix+".question", "is required")
	}
	if len(item.Options) != len(model.OptionLabels) {
		collector.add(prefix+".options", fmt.Sprintf("must have exactly %d entries, got %d", len(model.OptionLabels), len(item.Options)))
	}
	for j, opt := range item.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			collector.add(fmt.Sprintf("%s.options[%d]", prefix, j), "is required")
		}
		q.Options = append(q.Options, opt)
	}

	if item.Type == multiSelectType {
		var set model.LabelSet
		if len(item.CorrectAnswers) == 0 {
			collector.add(prefix+".correctAnswers", "must include at least one entry")
		}
		for j, raw := range item.CorrectAnswers {
			l, err := model.ParseLabel(raw)
			if err != nil || !l.IsOption() {
				collector.add(fmt.Sprintf("%s.correctAnswers[%d]", prefix, j), fmt.Sprintf("unknown option %q", raw))
				continue
			}
			if set.Has(l) {
				collector.add(fmt.Sprintf("%s.correctAnswers[%d]", prefix, j), fmt.Sprintf("duplicate option %q", raw))
			}
			set = set.With(l)
		}
		q.Answer = model.MultiSelect{Correct: set}
	} else {
		if item.Type != "" {
			collector.add(prefix+".type", fmt.Sprintf("unsupported type %q", item.Type))
		}
		l, err := model.ParseLabel(item.CorrectAnswer)
		if err != nil || !l.IsOption() {
			collector.add(prefix+".correctAnswer", fmt.Sprintf("unknown option %q", item.CorrectAnswer))
		}
		q.Answer = model.SingleChoice{Correct: l}
	}
	return q, len(collector.issues) == before
}
