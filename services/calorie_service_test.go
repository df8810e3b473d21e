package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Sunbridger/lixiaona/llm"
)

// fakeChatter is a canned model for the services.
type fakeChatter struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatter) Chat(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
	f.calls++
	return f.reply, f.err
}

func testLexicon() Lexicon {
	return Lexicon{{"鸡蛋", 80}, {"米饭", 220}}
}

func TestEstimateLocalQuantityParsing(t *testing.T) {
	svc := NewCalorieService(nil, testLexicon())

	tests := []struct {
		name      string
		breakfast string
		want      int
	}{
		// (2*80 + 220) * 1.1 = 418
		{"arabic numeral", "2个鸡蛋 米饭", 418},
		// CJK numeral word parses the same way
		{"cjk numeral", "两个鸡蛋 米饭", 418},
		// no quantity defaults to 1: (80 + 220) * 1.1 = 330
		{"no quantity", "鸡蛋 米饭", 330},
		// measure word is optional filler between numeral and key
		{"numeral without measure word", "3鸡蛋 米饭", 506},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := svc.EstimateLocal(tc.breakfast, "", "")
			if got != tc.want {
				t.Fatalf("EstimateLocal(%q) = %d, want %d", tc.breakfast, got, tc.want)
			}
		})
	}
}

func TestEstimateLocalDefaultCosts(t *testing.T) {
	svc := NewCalorieService(nil, testLexicon())

	// No lexicon hits at all: flat per-slot costs
	got := svc.EstimateLocal("随便吃了点", "外卖", "")
	if got != 750 {
		t.Fatalf("expected 300+450=750 for unmatched breakfast+lunch, got %d", got)
	}

	// One hit but an implausibly small total: the slot default is added on
	// top of the matched calories
	got = svc.EstimateLocal("鸡蛋", "", "")
	if got != 380 {
		t.Fatalf("expected 80+300=380 for a sub-threshold total, got %d", got)
	}

	// Dinner-only unmatched text
	got = svc.EstimateLocal("", "", "吃了一些东西")
	if got != 350 {
		t.Fatalf("expected dinner default 350, got %d", got)
	}
}

func TestEstimateLocalIsDeterministic(t *testing.T) {
	svc := NewCalorieService(nil, DefaultLexicon())

	input := "两个鸡蛋 半根玉米 一袋无糖酸奶"
	first := svc.EstimateLocal(input, "少量白米饭 清炒西葫芦", "水煮虾 凉拌黄瓜")
	for i := 0; i < 5; i++ {
		again := svc.EstimateLocal(input, "少量白米饭 清炒西葫芦", "水煮虾 凉拌黄瓜")
		if again != first {
			t.Fatalf("estimate changed between runs: %d then %d", first, again)
		}
	}
	if first < 0 {
		t.Fatalf("estimate must be non-negative, got %d", first)
	}
}

func TestEstimateLocalEmptyInput(t *testing.T) {
	svc := NewCalorieService(nil, testLexicon())
	if got := svc.EstimateLocal("", "  ", ""); got != 0 {
		t.Fatalf("expected 0 for blank slots, got %d", got)
	}
}

func TestAnalyzeFoodCaloriesEmptyInputSkipsEverything(t *testing.T) {
	chat := &fakeChatter{reply: "1500"}
	svc := NewCalorieService(chat, testLexicon())

	calories, ok := svc.AnalyzeFoodCalories(context.Background(), "", "  ", "\t")
	if ok {
		t.Fatalf("expected no estimate for all-blank input, got %d", calories)
	}
	if chat.calls != 0 {
		t.Fatalf("remote model must not be called for all-blank input, got %d calls", chat.calls)
	}
}

func TestAnalyzeFoodCaloriesUsesRemoteWhenValid(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"bare integer", "1500", 1500},
		{"integer with prose", "大约1500大卡", 1500},
		{"integer with whitespace", "  1500\n", 1500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCalorieService(&fakeChatter{reply: tc.reply}, testLexicon())
			calories, ok := svc.AnalyzeFoodCalories(context.Background(), "鸡蛋 米饭", "", "")
			if !ok {
				t.Fatal("expected an estimate")
			}
			if calories != tc.want {
				t.Fatalf("expected remote value %d, got %d", tc.want, calories)
			}
		})
	}
}

func TestAnalyzeFoodCaloriesFallsBackToLocal(t *testing.T) {
	lex := testLexicon()
	local := NewCalorieService(nil, lex)
	wantLocal := local.EstimateLocal("鸡蛋 米饭", "", "")

	tests := []struct {
		name string
		chat *fakeChatter
	}{
		{"transport error", &fakeChatter{err: errors.New("connection refused")}},
		{"zero reply", &fakeChatter{reply: "0"}},
		{"negative reply", &fakeChatter{reply: "-5"}},
		{"no number in reply", &fakeChatter{reply: "抱歉，我无法估算"}},
		{"empty reply", &fakeChatter{reply: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCalorieService(tc.chat, lex)
			calories, ok := svc.AnalyzeFoodCalories(context.Background(), "鸡蛋 米饭", "", "")
			if !ok {
				t.Fatal("expected an estimate despite the remote failure")
			}
			if calories != wantLocal {
				t.Fatalf("fallback must equal the local estimate %d, got %d", wantLocal, calories)
			}
			if tc.chat.calls != 1 {
				t.Fatalf("remote must be attempted exactly once, got %d calls", tc.chat.calls)
			}
		})
	}
}

func TestParseCalorieReplyBounds(t *testing.T) {
	if _, err := parseCalorieReply("123456789012"); err == nil {
		t.Fatal("expected an error for an absurdly long number")
	}
	if v, err := parseCalorieReply("650"); err != nil || v != 650 {
		t.Fatalf("expected 650, got %d (%v)", v, err)
	}
}
