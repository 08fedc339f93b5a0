package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "AppTitle")
	if got != "Space Quiz" {
		t.Errorf("T(AppTitle) = %q, want 'Space Quiz'", got)
	}

	got = T(ctx, "StartGame")
	if got != "Start" {
		t.Errorf("T(StartGame) = %q, want 'Start'", got)
	}
}

func TestTranslateChinese(t *testing.T) {
	ctx := initLang(t, "zh")

	got := T(ctx, "Statistics")
	if got != "题目统计" {
		t.Errorf("T(Statistics) = %q, want '题目统计'", got)
	}

	got = T(ctx, "NoBankSelected")
	if got != "请先选择一个题库" {
		t.Errorf("T(NoBankSelected) = %q, want '请先选择一个题库'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "QuestionCount", 1)
	if got1 != "1 question" {
		t.Errorf("Tp(QuestionCount, 1) = %q, want '1 question'", got1)
	}

	got5 := Tp(ctx, "QuestionCount", 5)
	if got5 != "5 questions" {
		t.Errorf("Tp(QuestionCount, 5) = %q, want '5 questions'", got5)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "GameWon", map[string]any{"Score": 5300})
	if got != "Congratulations! You finished every question. Final score: 5300" {
		t.Errorf("Td(GameWon, Score=5300) = %q", got)
	}
}

func TestCombo(t *testing.T) {
	tests := []struct {
		lang  string
		count int
		tier  int
		want  string
	}{
		{"en", 3, 0, "3 COMBO!"},
		{"en", 7, 5, "5 in a row, amazing!"},
		{"en", 25, 20, "20 in a row!!! Graduated!!!"},
		{"zh", 10, 10, "10连击，够了够了别练了！"},
		{"zh", 2, 0, "2 COMBO!"},
	}
	for _, tt := range tests {
		ctx := initLang(t, tt.lang)
		if got := Combo(ctx, tt.count, tt.tier); got != tt.want {
			t.Errorf("Combo(%s, %d, %d) = %q, want %q", tt.lang, tt.count, tt.tier, got, tt.want)
		}
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestMiddlewareNegotiation(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{"fallback", "/", "", "Space Quiz"},
		{"accept header", "/", "zh-CN,zh;q=0.9", "太空答题"},
		{"query wins", "/?lang=en", "zh-CN", "Space Quiz"},
		{"query only", "/?lang=zh", "", "太空答题"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = T(r.Context(), "AppTitle")
			}))
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("AppTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultLanguageWithoutLocalizer(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en", "Space Quiz"},
		{"zh", "太空答题"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if err := Init(tt.lang); err != nil {
				t.Fatalf("Init: %v", err)
			}
			if got := T(context.Background(), "AppTitle"); got != tt.want {
				t.Errorf("AppTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitRejectsBadLanguage(t *testing.T) {
	if err := Init("not a tag!"); err == nil {
		t.Error("expected an error for an invalid language tag")
	}
}
