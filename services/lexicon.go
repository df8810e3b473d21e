package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// LexiconEntry maps a food-name substring to a baseline calorie cost per
// typical serving.
type LexiconEntry struct {
	Key      string `yaml:"key"`
	Calories int    `yaml:"calories"`
}

// Lexicon is an ordered food table. Slice order is match order, and every
// key is tested against the text independently: a longer key ("红烧鸡翅")
// and a shorter key contained in it ("鸡翅") both match the same span and
// both contribute to the estimate. That double counting is a known quirk
// of the estimator and is kept as-is so estimates stay stable.
type Lexicon []LexiconEntry

// Match is one lexicon hit inside a text.
type Match struct {
	Key      string
	Calories int
	Position int
}

// Lookup returns every lexicon entry contained in text, case-insensitively,
// in lexicon order. Overlapping matches are not deduplicated.
func (l Lexicon) Lookup(text string) []Match {
	lower := strings.ToLower(text)
	var matches []Match
	for _, e := range l {
		idx := strings.Index(lower, strings.ToLower(e.Key))
		if idx < 0 {
			continue
		}
		matches = append(matches, Match{Key: e.Key, Calories: e.Calories, Position: idx})
	}
	return matches
}

// LoadLexicon reads a YAML food table (a list of {key, calories}) that
// replaces the built-in one.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read lexicon file: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("unable to unmarshal lexicon YAML: %w", err)
	}

	if len(lex) == 0 {
		return nil, fmt.Errorf("lexicon file %s holds no entries", path)
	}
	for i, e := range lex {
		if strings.TrimSpace(e.Key) == "" {
			return nil, fmt.Errorf("lexicon entry %d has an empty key", i)
		}
		if e.Calories <= 0 {
			return nil, fmt.Errorf("lexicon entry %q has non-positive calories", e.Key)
		}
	}
	return lex, nil
}

// DefaultLexicon returns the built-in food table (kcal per typical serving).
func DefaultLexicon() Lexicon {
	return Lexicon{
		// 主食
		{"米饭", 220}, {"饭", 220}, {"粥", 120}, {"馒头", 220}, {"包子", 200},
		{"面条", 300}, {"面", 300}, {"粉", 280}, {"吐司", 100}, {"面包", 150},
		{"全麦", 120}, {"玉米", 100}, {"红薯", 130}, {"紫薯", 130}, {"燕麦", 150},
		{"糙米", 110}, {"荞麦", 100}, {"藜麦", 120},

		// 蛋白质
		{"鸡蛋", 80}, {"蛋", 80}, {"荷包蛋", 150}, {"水煮蛋", 80},
		{"牛奶", 130}, {"豆浆", 100}, {"酸奶", 120}, {"豆奶", 110},
		{"鸡胸", 130}, {"鸡肉", 180}, {"鸡腿", 260}, {"鸡翅", 220}, {"红烧鸡翅", 250},
		{"牛肉", 200}, {"牛排", 300}, {"猪肉", 350}, {"排骨", 300}, {"五花肉", 400},
		{"鱼", 120}, {"虾", 100}, {"豆腐", 80}, {"墨鱼", 90}, {"鱿鱼", 100},

		// 蔬果
		{"青菜", 40}, {"白菜", 30}, {"菠菜", 30}, {"西蓝花", 35}, {"生菜", 20}, {"花菜", 35},
		{"黄瓜", 20}, {"番茄", 30}, {"西红柿", 30}, {"胡萝卜", 40}, {"红萝卜", 40},
		{"西葫芦", 30}, {"豆芽", 30}, {"豌豆", 80},
		{"苹果", 50}, {"香蕉", 90}, {"梨", 50}, {"西瓜", 30}, {"葡萄", 60},
		{"水果", 60}, {"沙拉", 150},

		// 饮料/零食
		{"咖啡", 15}, {"美式", 10}, {"拿铁", 180}, {"奶茶", 450}, {"可乐", 150},
		{"蛋糕", 350}, {"饼干", 200}, {"巧克力", 300}, {"薯片", 300},
		{"汉堡", 550}, {"薯条", 350}, {"披萨", 400}, {"火锅", 800}, {"烧烤", 600},
	}
}
