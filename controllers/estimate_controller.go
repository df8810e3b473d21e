package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/services"
)

type EstimateRequest struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

type EstimateResponse struct {
	// Calories is null when there was nothing to estimate, which is not
	// the same thing as a 0 kcal day.
	Calories *int `json:"calories"`
}

// Estimate runs the hybrid calorie estimator synchronously for the meal
// texts in the request. It always answers 200 with a number or null; a
// degraded (local) estimate is indistinguishable from a remote one here.
func Estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logger.Info("Received estimate request")

	svc := services.NewCalorieServiceFromEnv()
	calories, ok := svc.AnalyzeFoodCalories(r.Context(), req.Breakfast, req.Lunch, req.Dinner)

	var resp EstimateResponse
	if ok {
		resp.Calories = &calories
	}
	respondJSON(w, http.StatusOK, resp)
}
