package controllers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sunbridger/lixiaona/database"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
	"github.com/Sunbridger/lixiaona/services"
)

// GetTip serves the daily recommendation. The composer is only consulted
// when the cached tip is missing or stale (its date key is not today's);
// a fresh cache hit never touches the model.
func GetTip(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	today := models.DateKey(now)

	var cached models.DailyTip
	err := database.DB.First(&cached, "date = ?", today).Error
	if err == nil && services.TipFresh(&cached, now) {
		respondJSON(w, http.StatusOK, cached)
		return
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to read cached tip", "error", err)
		// Fall through: a recomputed tip is still better than an error.
	}

	var profile models.Profile
	if err := database.DB.First(&profile).Error; err != nil {
		logger.Error("Failed to fetch profile for tip", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to build recommendation")
		return
	}

	var logs []models.DailyLog
	if err := database.DB.Order("date desc").Limit(7).Find(&logs).Error; err != nil {
		logger.Warn("Failed to fetch logs for tip", "error", err)
	}

	svc := services.NewRecommendationServiceFromEnv()
	tip := svc.GetTip(r.Context(), profile, logs, now)

	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(&tip).Error; err != nil {
		logger.Error("Failed to cache tip", "error", err)
	}

	respondJSON(w, http.StatusOK, tip)
}
