package controllers

import (
	"net/http"

	"github.com/Sunbridger/lixiaona/database"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
	"github.com/Sunbridger/lixiaona/services"
)

// GetSummary returns the dashboard progress numbers: current weight,
// weight lost, goal progress and BMI.
func GetSummary(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := database.DB.First(&profile).Error; err != nil {
		logger.Error("Failed to fetch profile for summary", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	var logs []models.DailyLog
	if err := database.DB.Find(&logs).Error; err != nil {
		logger.Error("Failed to fetch logs for summary", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	respondJSON(w, http.StatusOK, services.Summarize(profile, logs))
}
