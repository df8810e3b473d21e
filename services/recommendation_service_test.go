package services

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sunbridger/lixiaona/models"
)

func TestBucketForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimeBucket
	}{
		{5, BucketMorning},
		{7, BucketMorning},
		{10, BucketMorning},
		{11, BucketNoon},
		{12, BucketNoon},
		{14, BucketAfternoon},
		{17, BucketAfternoon},
		{18, BucketEvening},
		{21, BucketEvening},
		{22, BucketLate},
		{23, BucketLate},
		{2, BucketLate},
	}

	for _, tc := range tests {
		if got := BucketForHour(tc.hour); got != tc.want {
			t.Errorf("BucketForHour(%d) = %s, want %s", tc.hour, got, tc.want)
		}
	}
}

func singleTipPools() TipPools {
	return TipPools{
		BucketMorning:   {{Icon: "🌞", Title: "morning-tip", Text: "早安！多喝水"}},
		BucketNoon:      {{Icon: "🍱", Title: "noon-tip", Text: "午餐八分饱"}},
		BucketAfternoon: {{Icon: "🍎", Title: "afternoon-tip", Text: "加餐吃苹果"}},
		BucketEvening:   {{Icon: "🥣", Title: "evening-tip", Text: "晚餐清淡"}},
		BucketLate:      {{Icon: "🌙", Title: "late-tip", Text: "早点睡吧"}},
	}
}

func testProfile() models.Profile {
	return models.Profile{Name: "李小娜", StartWeight: 50.8, TargetWeight: 46.8}
}

func at(hour int) time.Time {
	return time.Date(2026, 8, 31, hour, 30, 0, 0, time.Local)
}

func TestGetTipStaticFallbackDrawsFromMatchingBucket(t *testing.T) {
	svc := NewRecommendationService(&fakeChatter{err: errors.New("timeout")}, singleTipPools(), rand.New(rand.NewSource(1)))

	tests := []struct {
		hour      int
		wantTitle string
	}{
		{7, "morning-tip"},
		{12, "noon-tip"},
		{23, "late-tip"},
	}

	for _, tc := range tests {
		tip := svc.GetTip(context.Background(), testProfile(), nil, at(tc.hour))
		if tip.Title != tc.wantTitle {
			t.Errorf("hour %d: expected tip %q, got %q", tc.hour, tc.wantTitle, tip.Title)
		}
		if tip.Source != "local" {
			t.Errorf("hour %d: expected local source, got %q", tc.hour, tip.Source)
		}
		if tip.Date != models.DateKey(at(tc.hour)) {
			t.Errorf("hour %d: expected today's date key, got %q", tc.hour, tip.Date)
		}
	}
}

func TestStaticTipPersonalizesMorningGreeting(t *testing.T) {
	svc := NewRecommendationService(&fakeChatter{err: errors.New("down")}, singleTipPools(), rand.New(rand.NewSource(1)))

	tip := svc.GetTip(context.Background(), testProfile(), nil, at(7))
	if !strings.Contains(tip.Text, "早安 李小娜！") {
		t.Fatalf("expected personalized greeting, got %q", tip.Text)
	}
}

func TestGetTipParsesRemoteJSON(t *testing.T) {
	replies := []string{
		`{"icon":"✨","title":"多喝水","text":"今天记得喝够8杯水哦"}`,
		"```json\n{\"icon\":\"✨\",\"title\":\"多喝水\",\"text\":\"今天记得喝够8杯水哦\"}\n```",
	}

	for _, reply := range replies {
		svc := NewRecommendationService(&fakeChatter{reply: reply}, singleTipPools(), rand.New(rand.NewSource(1)))
		tip := svc.GetTip(context.Background(), testProfile(), nil, at(12))
		if tip.Source != "remote" {
			t.Fatalf("expected remote tip for reply %q, got source %q", reply, tip.Source)
		}
		if tip.Icon != "✨" || tip.Title != "多喝水" || tip.Text != "今天记得喝够8杯水哦" {
			t.Fatalf("unexpected parsed tip: %+v", tip)
		}
	}
}

func TestGetTipRejectsMalformedRemoteReplies(t *testing.T) {
	replies := []string{
		"好的，多喝水哦！",
		`{"icon":"✨","title":"","text":"缺了标题"}`,
		`{"icon":"✨","title":"多喝水"}`,
	}

	for _, reply := range replies {
		svc := NewRecommendationService(&fakeChatter{reply: reply}, singleTipPools(), rand.New(rand.NewSource(1)))
		tip := svc.GetTip(context.Background(), testProfile(), nil, at(12))
		if tip.Source != "local" {
			t.Fatalf("expected static fallback for reply %q, got %+v", reply, tip)
		}
		if tip.Title != "noon-tip" {
			t.Fatalf("expected noon pool for reply %q, got %q", reply, tip.Title)
		}
	}
}

func TestGetTipTruncatesOverlongFields(t *testing.T) {
	long := strings.Repeat("水", 300)
	reply := `{"icon":"✨","title":"` + strings.Repeat("题", 40) + `","text":"` + long + `"}`

	svc := NewRecommendationService(&fakeChatter{reply: reply}, singleTipPools(), rand.New(rand.NewSource(1)))
	tip := svc.GetTip(context.Background(), testProfile(), nil, at(12))
	if tip.Source != "remote" {
		t.Fatalf("expected remote tip, got %+v", tip)
	}
	if n := len([]rune(tip.Title)); n != tipTitleMaxRunes {
		t.Fatalf("expected title truncated to %d runes, got %d", tipTitleMaxRunes, n)
	}
	if n := len([]rune(tip.Text)); n != tipTextMaxRunes {
		t.Fatalf("expected text truncated to %d runes, got %d", tipTextMaxRunes, n)
	}
}

func TestTipFresh(t *testing.T) {
	now := at(12)

	fresh := &models.DailyTip{Date: models.DateKey(now)}
	if !TipFresh(fresh, now) {
		t.Fatal("expected today's tip to be fresh")
	}

	stale := &models.DailyTip{Date: models.DateKey(now.AddDate(0, 0, -1))}
	if TipFresh(stale, now) {
		t.Fatal("expected yesterday's tip to be stale")
	}

	if TipFresh(nil, now) {
		t.Fatal("expected a missing tip to be stale")
	}
}

func TestLoadTipPoolsFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.yaml")
	content := "morning:\n  - icon: \"🌞\"\n    title: 早起\n    text: 喝杯温水\nlate:\n  - icon: \"🌙\"\n    title: 睡觉\n    text: 放下手机\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pools, err := LoadTipPools(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pools[BucketMorning]) != 1 || pools[BucketMorning][0].Title != "早起" {
		t.Fatalf("unexpected morning pool: %+v", pools[BucketMorning])
	}
	if len(pools[BucketLate]) != 1 {
		t.Fatalf("unexpected late pool: %+v", pools[BucketLate])
	}
}

func TestLoadTipPoolsRejectsUnknownBucket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.yaml")
	content := "brunch:\n  - icon: \"🥐\"\n    title: 早午餐\n    text: 不存在的时段\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadTipPools(path); err == nil {
		t.Fatal("expected an error for an unknown bucket name")
	}
}
