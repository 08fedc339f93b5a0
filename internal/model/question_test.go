package model

import (
	"encoding/json"
	"testing"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    Label
		wantErr bool
	}{
		{"a", LabelA, false},
		{" D ", LabelD, false},
		{"true", LabelTrue, false},
		{"submit", LabelSubmit, false},
		{"E", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLabel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLabelSet(t *testing.T) {
	s := NewLabelSet(LabelC, LabelA, LabelTrue)
	if s.Len() != 2 {
		t.Fatalf("expected 2 letters, got %d", s.Len())
	}
	if !s.Has(LabelA) || !s.Has(LabelC) || s.Has(LabelB) {
		t.Errorf("unexpected membership: %v", s.Labels())
	}
	if s.Has(LabelTrue) {
		t.Error("non-option labels must not be members")
	}

	s = s.Toggle(LabelA).Toggle(LabelD)
	got := s.Labels()
	if len(got) != 2 || got[0] != LabelC || got[1] != LabelD {
		t.Errorf("expected [C D] after toggles, got %v", got)
	}
	if s.Toggle(LabelD).Toggle(LabelD) != s {
		t.Error("double toggle should be identity")
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `["C","D"]` {
		t.Errorf("unexpected json %s", data)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := map[string]Difficulty{
		"easy":      DifficultyEasy,
		"ADVANCED":  DifficultyAdvanced,
		" expert ":  DifficultyExpert,
		"nightmare": DifficultyEasy,
		"":          DifficultyEasy,
	}
	for in, want := range tests {
		if got := ParseDifficulty(in); got != want {
			t.Errorf("ParseDifficulty(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuestionJSON(t *testing.T) {
	questions := []Question{
		{Prompt: "single", Options: []string{"a", "b", "c", "d"}, Answer: SingleChoice{Correct: LabelB}},
		{Prompt: "multi", Options: []string{"a", "b", "c", "d"}, Answer: MultiSelect{Correct: NewLabelSet(LabelA, LabelD)}},
		{Prompt: "tf", Answer: TrueFalse{Correct: true}},
	}
	for _, q := range questions {
		t.Run(q.Prompt, func(t *testing.T) {
			data, err := json.Marshal(q)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var got Question
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.Kind() != q.Kind() || got.Answer != q.Answer {
				t.Errorf("got %#v, want %#v", got.Answer, q.Answer)
			}
		})
	}

	if _, err := json.Marshal(Question{Prompt: "broken"}); err == nil {
		t.Error("expected error for question without answer")
	}
}
