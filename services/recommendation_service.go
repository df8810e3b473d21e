package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v2"

	"github.com/Sunbridger/lixiaona/config"
	"github.com/Sunbridger/lixiaona/llm"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
)

// TimeBucket is the time-of-day category a tip is drawn from.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketNoon      TimeBucket = "noon"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
	BucketLate      TimeBucket = "late"
)

// BucketForHour maps an hour (0-23) onto its tip bucket. The boundaries are
// fixed: 11-14 noon, 14-18 afternoon, 18-22 evening, 22-5 late night, and
// everything else morning.
func BucketForHour(hour int) TimeBucket {
	switch {
	case hour >= 11 && hour < 14:
		return BucketNoon
	case hour >= 14 && hour < 18:
		return BucketAfternoon
	case hour >= 18 && hour < 22:
		return BucketEvening
	case hour >= 22 || hour < 5:
		return BucketLate
	default:
		return BucketMorning
	}
}

// Tip is one static recommendation before the date stamp is applied.
type Tip struct {
	Icon  string `yaml:"icon"`
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

// TipPools holds the static fallback tips per time bucket.
type TipPools map[TimeBucket][]Tip

// DefaultTipPools returns the built-in fallback tip tables.
func DefaultTipPools() TipPools {
	return TipPools{
		BucketMorning: {
			{Icon: "🌞", Title: "元气早餐", Text: "早安！早餐记得吃点蛋白质（鸡蛋/牛奶），开启一整天的高代谢！"},
			{Icon: "🥪", Title: "碳水要适量", Text: "早餐吃点粗粮面包或玉米，比白粥更抗饿哦！"},
			{Icon: "💧", Title: "早起一杯水", Text: "起床先喝温水，唤醒肠胃，加速排毒，皮肤也会变好！"},
			{Icon: "☕️", Title: "消肿黑咖", Text: "早上一杯黑咖啡，去水肿神器，还能提神醒脑！"},
		},
		BucketNoon: {
			{Icon: "🍱", Title: "午餐八分饱", Text: "细嚼慢咽，每口嚼20下，大脑才有时间接收'吃饱了'的信号。"},
			{Icon: "🥗", Title: "蔬菜先吃", Text: "先吃蔬菜垫底，再吃肉和主食，可以平稳血糖，不易长胖。"},
			{Icon: "🍗", Title: "补充优质蛋白", Text: "午餐来点鸡胸肉或鱼虾，下午才不会饿得想吃零食。"},
		},
		BucketAfternoon: {
			{Icon: "🍵", Title: "拒绝奶茶", Text: "想喝饮料？试试黑咖啡或无糖茶，0热量还能消水肿！"},
			{Icon: "🍎", Title: "加餐首选", Text: "饿了吃个苹果或一小把坚果，比吃饼干健康多啦。"},
			{Icon: "🥤", Title: "多喝水", Text: "有时候感觉饿其实是渴了，先喝杯水试试？"},
		},
		BucketEvening: {
			{Icon: "🥣", Title: "晚餐清淡", Text: "晚餐少吃主食，多吃蔬菜和鱼虾，减轻肠胃负担。"},
			{Icon: "🚶‍♀️", Title: "饭后走走", Text: "吃完饭别马上躺下，靠墙站立15分钟或散步对消化很好哦。"},
			{Icon: "🥦", Title: "控糖时刻", Text: "晚上尽量避开高糖水果和甜点，让身体在睡眠中持续燃脂。"},
		},
		BucketLate: {
			{Icon: "🌙", Title: "早点睡吧", Text: "熬夜容易掉肌肉长脂肪，早睡是性价比最高的减肥法！"},
			{Icon: "🚫", Title: "忍住夜宵", Text: "睡前3小时不进食，明早体重会给你惊喜的！坚持住！"},
			{Icon: "🛌", Title: "美容觉", Text: "放下手机，做个好梦。充足的睡眠能抑制食欲激素哦。"},
		},
	}
}

// TipFresh reports whether a cached tip is still valid: one tip per calendar
// day, so it is fresh only while its date key equals today's.
func TipFresh(tip *models.DailyTip, now time.Time) bool {
	return tip != nil && tip.Date == models.DateKey(now)
}

const (
	tipTitleMaxRunes = 20
	tipTextMaxRunes  = 200

	tipTemperature = 0.3

	tipSystemPrompt = "你叫Momo，是一个可爱、元气满满的减肥助手。请根据用户的档案、最近的记录和当前时间，" +
		"给出一个简短、贴心且实用的减肥建议或鼓励。语气像闺蜜一样亲切，多用emoji。" +
		`只返回一个JSON对象，格式严格为 {"icon":"一个emoji","title":"不超过10个字的标题","text":"不超过50字的建议"}，` +
		"严禁返回JSON以外的任何内容。"
)

// RecommendationService produces the daily tip: remote model when it
// cooperates, static per-bucket tables when it does not. It is stateless;
// the per-day cache belongs to the caller.
type RecommendationService struct {
	chat  Chatter
	pools TipPools
	rng   *rand.Rand
}

func NewRecommendationService(chat Chatter, pools TipPools, rng *rand.Rand) *RecommendationService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RecommendationService{chat: chat, pools: pools, rng: rng}
}

// NewRecommendationServiceFromEnv builds the service with the configured LLM
// client and the built-in pools, or the TIP_POOLS_FILE override when set.
func NewRecommendationServiceFromEnv() *RecommendationService {
	pools := DefaultTipPools()
	if path := config.GetEnv("TIP_POOLS_FILE", ""); path != "" {
		loaded, err := LoadTipPools(path)
		if err != nil {
			logger.Warn("Ignoring tip pools override file", "path", path, "error", err)
		} else {
			pools = loaded
		}
	}
	return NewRecommendationService(llm.NewClient(), pools, nil)
}

// GetTip returns today's recommendation. Remote and parse failures are
// absorbed: the static table answer is always available, so the caller
// never sees an error.
func (s *RecommendationService) GetTip(ctx context.Context, profile models.Profile, logs []models.DailyLog, now time.Time) models.DailyTip {
	tip, err := s.remoteTip(ctx, profile, logs, now)
	if err != nil {
		logger.Warn("Remote recommendation unavailable, falling back to static tips", "error", err)
		return s.staticTip(profile, now)
	}
	return tip
}

func (s *RecommendationService) remoteTip(ctx context.Context, profile models.Profile, logs []models.DailyLog, now time.Time) (models.DailyTip, error) {
	content, err := s.chat.Chat(ctx, []llm.Message{
		{Role: "system", Content: tipSystemPrompt},
		{Role: "user", Content: buildTipContext(profile, logs, now)},
	}, tipTemperature)
	if err != nil {
		return models.DailyTip{}, err
	}

	var parsed struct {
		Icon  string `json:"icon"`
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &parsed); err != nil {
		return models.DailyTip{}, fmt.Errorf("tip reply is not the expected JSON: %w", err)
	}

	icon := strings.TrimSpace(parsed.Icon)
	title := truncateRunes(strings.TrimSpace(parsed.Title), tipTitleMaxRunes)
	text := truncateRunes(strings.TrimSpace(parsed.Text), tipTextMaxRunes)
	if icon == "" || title == "" || text == "" {
		return models.DailyTip{}, fmt.Errorf("tip reply is missing a required field: %q", content)
	}

	return models.DailyTip{
		Date:   models.DateKey(now),
		Icon:   icon,
		Title:  title,
		Text:   text,
		Source: "remote",
	}, nil
}

// staticTip draws a random entry from the current time bucket's pool and
// personalizes the morning greeting.
func (s *RecommendationService) staticTip(profile models.Profile, now time.Time) models.DailyTip {
	pool := s.pools[BucketForHour(now.Hour())]
	if len(pool) == 0 {
		pool = s.pools[BucketMorning]
	}
	if len(pool) == 0 {
		// Nothing configured at all; still answer something.
		pool = []Tip{{Icon: "🌙", Title: "早点休息", Text: "早睡也是减肥的一部分哦！"}}
	}

	tip := pool[s.rng.Intn(len(pool))]
	text := strings.Replace(tip.Text, "早安！", "早安 "+profile.Name+"！", 1)

	return models.DailyTip{
		Date:   models.DateKey(now),
		Icon:   tip.Icon,
		Title:  tip.Title,
		Text:   text,
		Source: "local",
	}
}

// buildTipContext summarizes the profile and up to a week of recent logs
// into the user message for the model.
func buildTipContext(profile models.Profile, logs []models.DailyLog, now time.Time) string {
	recent := make([]models.DailyLog, len(logs))
	copy(recent, logs)
	sort.Slice(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > 7 {
		recent = recent[:7]
	}

	var sb strings.Builder
	current := LatestWeight(profile, logs)
	fmt.Fprintf(&sb, "用户:%s, 当前体重:%.1fkg, 目标:%.1fkg. 当前时间:%d点.\n", profile.Name, current, profile.TargetWeight, now.Hour())

	if len(recent) > 0 {
		sb.WriteString("最近记录:\n")
		for _, l := range recent {
			fmt.Fprintf(&sb, "- %s:", l.ID)
			if l.Weight != nil {
				fmt.Fprintf(&sb, " 体重%.1fkg", *l.Weight)
			}
			if l.CaloriesIn != nil {
				fmt.Fprintf(&sb, " 摄入%d大卡", *l.CaloriesIn)
			}
			if meals := strings.TrimSpace(strings.Join([]string{l.Breakfast, l.Lunch, l.Dinner}, " ")); meals != "" {
				fmt.Fprintf(&sb, " 饮食:%s", meals)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// LoadTipPools reads a YAML override of the static tip tables, keyed by
// bucket name (morning/noon/afternoon/evening/late).
func LoadTipPools(path string) (TipPools, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read tip pools file: %w", err)
	}

	var raw map[string][]Tip
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to unmarshal tip pools YAML: %w", err)
	}

	pools := TipPools{}
	for name, tips := range raw {
		bucket := TimeBucket(name)
		switch bucket {
		case BucketMorning, BucketNoon, BucketAfternoon, BucketEvening, BucketLate:
		default:
			return nil, fmt.Errorf("unknown tip bucket %q", name)
		}
		if len(tips) == 0 {
			return nil, fmt.Errorf("tip bucket %q is empty", name)
		}
		pools[bucket] = tips
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("tip pools file %s holds no buckets", path)
	}
	return pools, nil
}

// stripCodeFences removes a wrapping markdown code block, which some models
// add around JSON output no matter what the prompt says.
func stripCodeFences(s string) string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
