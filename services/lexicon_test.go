package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupOverlappingKeysAllMatch(t *testing.T) {
	lex := DefaultLexicon()

	matches := lex.Lookup("红烧鸡翅")

	var keys []string
	for _, m := range matches {
		keys = append(keys, m.Key)
	}

	if !containsKey(keys, "红烧鸡翅") {
		t.Fatalf("expected the specific key to match, got %v", keys)
	}
	if !containsKey(keys, "鸡翅") {
		t.Fatalf("expected the shorter contained key to also match, got %v", keys)
	}
	if len(matches) != 2 {
		t.Fatalf("expected exactly the two overlapping matches, got %v", keys)
	}
}

func TestLookupReportsPositions(t *testing.T) {
	lex := Lexicon{{"米饭", 220}, {"鸡蛋", 80}}

	matches := lex.Lookup("鸡蛋配米饭")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	// Lexicon order, not text order
	if matches[0].Key != "米饭" || matches[1].Key != "鸡蛋" {
		t.Fatalf("expected matches in lexicon order, got %v", matches)
	}
	if matches[1].Position != 0 {
		t.Fatalf("expected 鸡蛋 at position 0, got %d", matches[1].Position)
	}
	if matches[0].Position <= matches[1].Position {
		t.Fatalf("expected 米饭 after 鸡蛋 in the text, got positions %d and %d", matches[0].Position, matches[1].Position)
	}
}

func TestLookupNoMatches(t *testing.T) {
	lex := Lexicon{{"米饭", 220}}
	if matches := lex.Lookup("随便吃了点"); len(matches) != 0 {
		t.Fatalf("expected no matches, got %v", matches)
	}
}

func TestLoadLexiconFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foods.yaml")
	content := "- key: 鸡蛋\n  calories: 80\n- key: 米饭\n  calories: 220\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lex) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lex))
	}
	if lex[0].Key != "鸡蛋" || lex[0].Calories != 80 {
		t.Fatalf("unexpected first entry: %+v", lex[0])
	}
	if lex[1].Key != "米饭" || lex[1].Calories != 220 {
		t.Fatalf("unexpected second entry: %+v", lex[1])
	}
}

func TestLoadLexiconRejectsBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foods.yaml")
	content := "- key: 鸡蛋\n  calories: 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadLexicon(path); err == nil {
		t.Fatal("expected an error for non-positive calories")
	}

	if _, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func containsKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}
