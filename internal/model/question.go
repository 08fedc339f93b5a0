package model

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// Label is the tag carried by a projectile.
type Label string

const (
	LabelA      Label = "A"
	LabelB      Label = "B"
	LabelC      Label = "C"
	LabelD      Label = "D"
	LabelTrue   Label = "TRUE"
	LabelFalse  Label = "FALSE"
	LabelSubmit Label = "SUBMIT"
)

// OptionLabels are the option letters in display order.
var OptionLabels = [4]Label{LabelA, LabelB, LabelC, LabelD}

// ParseLabel validates a projectile label.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToUpper(strings.TrimSpace(s)))
	switch l {
	case LabelA, LabelB, LabelC, LabelD, LabelTrue, LabelFalse, LabelSubmit:
		return l, nil
	}
	return "", fmt.Errorf("unknown label %q", s)
}

// IsOption reports whether l is one of the option letters A-D.
func (l Label) IsOption() bool {
	return l.optionIndex() >= 0
}

func (l Label) optionIndex() int {
	for i, o := range OptionLabels {
		if o == l {
			return i
		}
	}
	return -1
}

// LabelSet is a set of option letters.
type LabelSet uint8

// NewLabelSet builds a set from option letters; non-option labels are ignored.
func NewLabelSet(labels ...Label) LabelSet {
	var s LabelSet
	for _, l := range labels {
		s = s.With(l)
	}
	return s
}

// With returns the set with l added.
func (s LabelSet) With(l Label) LabelSet {
	i := l.optionIndex()
	if i < 0 {
		return s
	}
	return s | 1<<i
}

// Toggle returns the set with membership of l flipped.
func (s LabelSet) Toggle(l Label) LabelSet {
	i := l.optionIndex()
	if i < 0 {
		return s
	}
	return s ^ 1<<i
}

// Has reports membership.
func (s LabelSet) Has(l Label) bool {
	i := l.optionIndex()
	return i >= 0 && s&(1<<i) != 0
}

// Len returns the number of letters in the set.
func (s LabelSet) Len() int {
	return bits.OnesCount8(uint8(s))
}

// Labels returns the letters in display order.
func (s LabelSet) Labels() []Label {
	out := make([]Label, 0, s.Len())
	for _, l := range OptionLabels {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s LabelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Labels())
}

// Kind names the question variant on the wire.
type Kind string

const (
	KindSingleChoice Kind = "single"
	KindMultiSelect  Kind = "multiSelect"
	KindTrueFalse    Kind = "trueFalse"
)

// Answer is the closed set of question variants.
type Answer interface {
	Kind() Kind
	isAnswer()
}

// SingleChoice has exactly one correct option letter.
type SingleChoice struct {
	Correct Label
}

// MultiSelect requires the exact set of correct letters.
type MultiSelect struct {
	Correct LabelSet
}

// TrueFalse has a boolean answer.
type TrueFalse struct {
	Correct bool
}

func (SingleChoice) Kind() Kind { return KindSingleChoice }
func (MultiSelect) Kind() Kind  { return KindMultiSelect }
func (TrueFalse) Kind() Kind    { return KindTrueFalse }

func (SingleChoice) isAnswer() {}
func (MultiSelect) isAnswer()  {}
func (TrueFalse) isAnswer()    {}

// Question is immutable once sampled.
type Question struct {
	Prompt  string
	Options []string
	Answer  Answer
}

// Kind returns the variant of the question.
func (q Question) Kind() Kind {
	if q.Answer == nil {
		return ""
	}
	return q.Answer.Kind()
}

// BoolLabel encodes a boolean answer as a projectile label.
func BoolLabel(v bool) Label {
	if v {
		return LabelTrue
	}
	return LabelFalse
}

type questionJSON struct {
	Prompt         string   `json:"question"`
	Kind           Kind     `json:"kind"`
	Options        []string `json:"options,omitempty"`
	CorrectAnswer  string   `json:"correct_answer,omitempty"`
	CorrectAnswers []Label  `json:"correct_answers,omitempty"`
}

// MarshalJSON flattens the variant for storage and snapshots.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{Prompt: q.Prompt, Kind: q.Kind(), Options: q.Options}
	switch a := q.Answer.(type) {
	case SingleChoice:
		out.CorrectAnswer = string(a.Correct)
	case MultiSelect:
		out.CorrectAnswers = a.Correct.Labels()
	case TrueFalse:
		out.CorrectAnswer = string(BoolLabel(a.Correct))
	default:
		return nil, fmt.Errorf("question %q: unknown answer variant %T", q.Prompt, q.Answer)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the variant written by MarshalJSON.
func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	q.Prompt = in.Prompt
	q.Options = in.Options
	switch in.Kind {
	case KindSingleChoice:
		l, err := ParseLabel(in.CorrectAnswer)
		if err != nil || !l.IsOption() {
			return fmt.Errorf("question %q: bad correct answer %q", in.Prompt, in.CorrectAnswer)
		}
		q.Answer = SingleChoice{Correct: l}
	case KindMultiSelect:
		q.Answer = MultiSelect{Correct: NewLabelSet(in.CorrectAnswers...)}
	case KindTrueFalse:
		q.Answer = TrueFalse{Correct: Label(in.CorrectAnswer) == LabelTrue}
	default:
		return fmt.Errorf("question %q: unknown kind %q", in.Prompt, in.Kind)
	}
	return nil
}
