package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm/clause"

	"github.com/Sunbridger/lixiaona/database"
	"github.com/Sunbridger/lixiaona/jobs"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
)

type UpsertLogRequest struct {
	Weight      *float64 `json:"weight,omitempty"`
	Breakfast   string   `json:"breakfast"`
	Lunch       string   `json:"lunch"`
	Dinner      string   `json:"dinner"`
	Mood        string   `json:"mood,omitempty"`
	CaloriesIn  *int     `json:"calories_in,omitempty"`
	CaloriesOut *int     `json:"calories_out,omitempty"`
}

// GetLogs lists every daily log, newest first.
func GetLogs(w http.ResponseWriter, r *http.Request) {
	var logs []models.DailyLog
	if err := database.DB.Order("date desc").Find(&logs).Error; err != nil {
		logger.Error("Failed to fetch logs", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// GetLog returns one day's log by its YYYY-MM-DD key.
func GetLog(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	var entry models.DailyLog
	if err := database.DB.First(&entry, "id = ?", models.DateKey(date)).Error; err != nil {
		respondError(w, http.StatusNotFound, "No log for that date")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// UpsertLog creates or replaces one day's log. When the saved log carries
// meal text but no manually entered intake, a background estimation job is
// queued; the estimate lands via SSE once the worker has written it back.
func UpsertLog(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	var req UpsertLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Weight != nil && (*req.Weight < 10 || *req.Weight > 400) {
		respondError(w, http.StatusBadRequest, "Weight out of plausible range")
		return
	}

	entry := models.DailyLog{
		ID:          models.DateKey(date),
		Date:        date,
		Weight:      req.Weight,
		Breakfast:   req.Breakfast,
		Lunch:       req.Lunch,
		Dinner:      req.Dinner,
		Mood:        req.Mood,
		CaloriesIn:  req.CaloriesIn,
		CaloriesOut: req.CaloriesOut,
	}

	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&entry).Error; err != nil {
		logger.Error("Failed to save log", "date", entry.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save log")
		return
	}

	logger.Info("Log saved", "date", entry.ID)

	if entry.HasMealText() && req.CaloriesIn == nil {
		jobs.GetWorker().Enqueue(entry.ID)
	}

	respondJSON(w, http.StatusOK, entry)
}

func parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := chi.URLParam(r, "date")
	date, err := time.Parse(models.DateKeyLayout, raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}
