package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Sunbridger/lixiaona/database"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
)

type UpdateProfileRequest struct {
	Name         string    `json:"name"`
	StartWeight  float64   `json:"start_weight"`
	TargetWeight float64   `json:"target_weight"`
	StartDate    time.Time `json:"start_date"`
	Height       *float64  `json:"height,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
}

// GetProfile returns the single user profile.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := database.DB.First(&profile).Error; err != nil {
		logger.Error("Failed to fetch profile", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile replaces the profile fields.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.StartWeight <= 0 || req.TargetWeight <= 0 {
		respondError(w, http.StatusBadRequest, "Weights must be positive")
		return
	}
	if req.Height != nil && (*req.Height < 50 || *req.Height > 250) {
		respondError(w, http.StatusBadRequest, "Height out of plausible range")
		return
	}

	var profile models.Profile
	if err := database.DB.First(&profile).Error; err != nil {
		logger.Error("Failed to fetch profile", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	profile.Name = req.Name
	profile.StartWeight = req.StartWeight
	profile.TargetWeight = req.TargetWeight
	if !req.StartDate.IsZero() {
		profile.StartDate = req.StartDate
	}
	profile.Height = req.Height
	profile.Avatar = req.Avatar

	if err := database.DB.Save(&profile).Error; err != nil {
		logger.Error("Failed to update profile", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	logger.Info("Profile updated", "name", profile.Name)
	respondJSON(w, http.StatusOK, profile)
}
