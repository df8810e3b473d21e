package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/Sunbridger/lixiaona/config"
	"github.com/Sunbridger/lixiaona/llm"
	"github.com/Sunbridger/lixiaona/logger"
)

// Chatter is the subset of llm.Client the services need. Kept as an
// interface so tests can swap in a canned model.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, temperature float64) (string, error)
}

const (
	// Below this lexicon-derived total the match set is treated as too
	// sparse to trust and the per-slot defaults kick in.
	minPlausibleTotal = 100

	// Flat per-slot costs when the lexicon gives nothing usable.
	defaultBreakfastCalories = 300
	defaultLunchCalories     = 450
	defaultDinnerCalories    = 350

	// Lexicon sums run low because oil and seasoning are not modeled.
	underestimateFactor = 1.1

	estimateTemperature = 0.3

	estimateSystemPrompt = "你是一个营养师。请根据用户输入的早午晚餐内容，估算总热量（大卡）。" +
		"如果没有写数量，按普通一人份估算。请只返回一个纯数字（整数），严禁包含任何文字、单位或标点符号。" +
		"如果内容为空或无法估算，返回 0。"
)

// cjkNumerals covers the numeral words the quantity parser understands.
var cjkNumerals = map[string]int{
	"一": 1, "二": 2, "两": 2, "三": 3, "四": 4,
	"五": 5, "六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
}

// CalorieService is the hybrid estimator: remote model first, deterministic
// lexicon scan as the fallback. It never surfaces an error to callers.
type CalorieService struct {
	chat    Chatter
	lexicon Lexicon

	// jitter, when set, adds bounded noise to the default-cost path. It is
	// presentation-only: paths that persist an estimate must leave it nil
	// so the same text always yields the same number.
	jitter *rand.Rand
}

func NewCalorieService(chat Chatter, lexicon Lexicon) *CalorieService {
	return &CalorieService{chat: chat, lexicon: lexicon}
}

// NewCalorieServiceFromEnv builds the service with the configured LLM client
// and the built-in lexicon, or the FOOD_LEXICON_FILE override when set.
func NewCalorieServiceFromEnv() *CalorieService {
	lex := DefaultLexicon()
	if path := config.GetEnv("FOOD_LEXICON_FILE", ""); path != "" {
		loaded, err := LoadLexicon(path)
		if err != nil {
			logger.Warn("Ignoring lexicon override file", "path", path, "error", err)
		} else {
			lex = loaded
		}
	}
	return NewCalorieService(llm.NewClient(), lex)
}

// WithJitter enables presentation-only noise on the default-cost path.
func (s *CalorieService) WithJitter(r *rand.Rand) *CalorieService {
	s.jitter = r
	return s
}

// AnalyzeFoodCalories estimates the day's total intake from free-text meal
// descriptions. All-blank input returns ok=false — "nothing to estimate",
// which is distinct from a 0 kcal estimate. Otherwise the remote model is
// tried first and any failure falls through to the local estimator, so the
// caller always gets a usable number.
func (s *CalorieService) AnalyzeFoodCalories(ctx context.Context, breakfast, lunch, dinner string) (int, bool) {
	if strings.TrimSpace(breakfast) == "" && strings.TrimSpace(lunch) == "" && strings.TrimSpace(dinner) == "" {
		return 0, false
	}

	calories, err := s.estimateRemote(ctx, breakfast, lunch, dinner)
	if err != nil {
		logger.Warn("Remote calorie estimate unavailable, falling back to local estimator", "error", err)
		return s.EstimateLocal(breakfast, lunch, dinner), true
	}

	logger.Info("Remote calorie estimate accepted", "calories", calories)
	return calories, true
}

// estimateRemote asks the model for a bare integer and validates it. Any
// transport, parse or range problem comes back as an error; the orchestrator
// decides what to do with it.
func (s *CalorieService) estimateRemote(ctx context.Context, breakfast, lunch, dinner string) (int, error) {
	content, err := s.chat.Chat(ctx, []llm.Message{
		{Role: "system", Content: estimateSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("早餐: %s, 午餐: %s, 晚餐: %s", breakfast, lunch, dinner)},
	}, estimateTemperature)
	if err != nil {
		return 0, err
	}

	calories, err := parseCalorieReply(content)
	if err != nil {
		return 0, err
	}
	return calories, nil
}

// A day's intake beyond this is a garbled reply, not food.
const maxCalorieReply = 50000

// parseCalorieReply extracts a positive integer from a model reply. A clean
// integer is taken as-is (so "-5" stays negative and is rejected); anything
// else has its digits stripped out, e.g. "大约1500大卡" -> 1500.
func parseCalorieReply(content string) (int, error) {
	trimmed := strings.TrimSpace(content)
	if v, err := strconv.Atoi(trimmed); err == nil {
		if v <= 0 || v > maxCalorieReply {
			return 0, fmt.Errorf("implausible calorie reply: %q", content)
		}
		return v, nil
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("no usable number in calorie reply: %q", content)
	}

	v, err := strconv.Atoi(digits.String())
	if err != nil || v <= 0 || v > maxCalorieReply {
		return 0, fmt.Errorf("implausible calorie reply: %q", content)
	}
	return v, nil
}

// EstimateLocal is the deterministic, network-free estimator. It scans the
// concatenated meal text for lexicon keys, multiplies each hit by an
// adjacent quantity, and sums. When nothing (or implausibly little) matches
// it falls back to flat per-slot costs added on top of whatever did match.
// It never fails; a garbled quantity token just means multiplier 1.
func (s *CalorieService) EstimateLocal(breakfast, lunch, dinner string) int {
	combined := strings.ToLower(breakfast + lunch + dinner)
	if strings.TrimSpace(combined) == "" {
		return 0
	}

	total := 0
	matchCount := 0
	for _, m := range s.lexicon.Lookup(combined) {
		total += m.Calories * quantityBefore(combined, m.Key)
		matchCount++
	}

	if matchCount == 0 || total < minPlausibleTotal {
		if strings.TrimSpace(breakfast) != "" {
			total += defaultBreakfastCalories
		}
		if strings.TrimSpace(lunch) != "" {
			total += defaultLunchCalories
		}
		if strings.TrimSpace(dinner) != "" {
			total += defaultDinnerCalories
		}
		if s.jitter != nil {
			total += s.jitter.Intn(51) - 25
		}
	} else {
		total = int(math.Round(float64(total) * underestimateFactor))
	}

	if total < 0 {
		total = 0
	}
	return total
}

// quantityBefore finds the quantity written ahead of a food key: an integer
// or a CJK numeral word, optionally followed by a measure word (个碗份片块
// 杯只). "2个鸡蛋" and "两个鸡蛋" both give 2; no quantity gives 1.
func quantityBefore(text, key string) int {
	re, err := regexp.Compile(`([0-9]+|[一二两三四五六七八九十])[个碗份片块杯只]*` + regexp.QuoteMeta(strings.ToLower(key)))
	if err != nil {
		return 1
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		return 1
	}

	if n, ok := cjkNumerals[m[1]]; ok {
		return n
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
