package jobs

import (
	"context"
	"sync"

	"github.com/Sunbridger/lixiaona/database"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
	"github.com/Sunbridger/lixiaona/services"
)

// EstimateJob asks for a calorie estimate of one day's log, addressed by
// its date key.
type EstimateJob struct {
	Date string
}

// EstimateUpdate is sent to SSE subscribers after a log's calories_in has
// been written back.
type EstimateUpdate struct {
	Date       string `json:"date"`
	CaloriesIn int    `json:"calories_in"`
}

// EstimateWorker runs calorie estimation off the request path so saving a
// log stays fast even when the remote model is slow.
type EstimateWorker struct {
	jobs        chan EstimateJob
	calorieSvc  *services.CalorieService
	subscribers map[chan EstimateUpdate]bool
	subMux      sync.RWMutex
}

var (
	worker     *EstimateWorker
	workerOnce sync.Once
)

// GetWorker returns the singleton EstimateWorker instance.
func GetWorker() *EstimateWorker {
	workerOnce.Do(func() {
		worker = &EstimateWorker{
			jobs:        make(chan EstimateJob, 100),
			calorieSvc:  services.NewCalorieServiceFromEnv(),
			subscribers: make(map[chan EstimateUpdate]bool),
		}
		go worker.run()
		logger.Info("Estimate worker started")
	})
	return worker
}

// Enqueue adds an estimation job to the queue.
func (w *EstimateWorker) Enqueue(date string) {
	select {
	case w.jobs <- EstimateJob{Date: date}:
		logger.Info("Estimate job enqueued", "date", date)
	default:
		logger.Warn("Estimate job queue full, dropping job", "date", date)
	}
}

// Subscribe registers a channel to receive estimate updates.
func (w *EstimateWorker) Subscribe(ch chan EstimateUpdate) {
	w.subMux.Lock()
	defer w.subMux.Unlock()
	w.subscribers[ch] = true
}

// Unsubscribe removes a channel from estimate updates.
func (w *EstimateWorker) Unsubscribe(ch chan EstimateUpdate) {
	w.subMux.Lock()
	defer w.subMux.Unlock()
	delete(w.subscribers, ch)
	close(ch)
}

// run processes jobs from the queue.
func (w *EstimateWorker) run() {
	for job := range w.jobs {
		w.processJob(job)
	}
}

func (w *EstimateWorker) processJob(job EstimateJob) {
	logger.Info("Processing estimate job", "date", job.Date)

	var entry models.DailyLog
	if err := database.DB.First(&entry, "id = ?", job.Date).Error; err != nil {
		logger.Error("Failed to fetch log for estimate job", "date", job.Date, "error", err)
		return
	}

	// A manually entered number wins over any estimate.
	if entry.CaloriesIn != nil && *entry.CaloriesIn > 0 {
		logger.Info("Log already has calories, skipping", "date", job.Date)
		return
	}

	calories, ok := w.calorieSvc.AnalyzeFoodCalories(context.Background(), entry.Breakfast, entry.Lunch, entry.Dinner)
	if !ok {
		logger.Info("Nothing to estimate for log", "date", job.Date)
		return
	}

	if err := database.DB.Model(&entry).Update("calories_in", calories).Error; err != nil {
		logger.Error("Failed to save calorie estimate", "date", job.Date, "error", err)
		return
	}

	logger.Info("Calorie estimate saved", "date", job.Date, "calories", calories)

	update := EstimateUpdate{Date: entry.ID, CaloriesIn: calories}

	w.subMux.RLock()
	for ch := range w.subscribers {
		select {
		case ch <- update:
		default:
			// Drop update if subscriber is slow
		}
	}
	w.subMux.RUnlock()
}
