package services

import (
	"errors"
	"math"

	"github.com/Sunbridger/lixiaona/models"
)

// ProgressSummary is the dashboard's headline numbers.
type ProgressSummary struct {
	StartWeight     float64  `json:"start_weight"`
	TargetWeight    float64  `json:"target_weight"`
	CurrentWeight   float64  `json:"current_weight"`
	WeightLost      float64  `json:"weight_lost"`
	ProgressPercent float64  `json:"progress_percent"`
	BMI             *float64 `json:"bmi,omitempty"`
	BMICategory     string   `json:"bmi_category,omitempty"`
}

// LatestWeight returns the most recently logged weight, or the profile's
// start weight when no log carries one.
func LatestWeight(profile models.Profile, logs []models.DailyLog) float64 {
	current := profile.StartWeight
	var latest *models.DailyLog
	for i := range logs {
		l := &logs[i]
		if l.Weight == nil {
			continue
		}
		if latest == nil || l.Date.After(latest.Date) {
			latest = l
		}
	}
	if latest != nil {
		current = *latest.Weight
	}
	return current
}

// Summarize computes weight-loss progress against the profile's goal.
// Weight lost is start minus current; progress percent is the lost share of
// the planned start-to-target span, clamped to [0, 100]. Both are rounded
// to one decimal.
func Summarize(profile models.Profile, logs []models.DailyLog) ProgressSummary {
	current := LatestWeight(profile, logs)

	lost := roundTenth(profile.StartWeight - current)

	percent := 0.0
	if span := profile.StartWeight - profile.TargetWeight; span > 0 {
		percent = (profile.StartWeight - current) / span * 100
	}
	percent = roundTenth(math.Min(100, math.Max(0, percent)))

	summary := ProgressSummary{
		StartWeight:     profile.StartWeight,
		TargetWeight:    profile.TargetWeight,
		CurrentWeight:   current,
		WeightLost:      lost,
		ProgressPercent: percent,
	}

	if profile.Height != nil {
		if bmi, err := CalculateBMI(*profile.Height, current); err == nil {
			rounded := roundTenth(bmi)
			summary.BMI = &rounded
			summary.BMICategory = BMICategory(bmi)
		}
	}
	return summary
}

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}

	h := heightCm / 100.0 // to meters
	return weightKg / (h * h), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "偏瘦"
	case bmi < 24.0:
		return "正常"
	case bmi < 28.0:
		return "偏胖"
	default:
		return "肥胖"
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
