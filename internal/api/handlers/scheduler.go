package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alphaframe/alphaframe/internal/scheduler"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// SchedulerHandler exposes job status and manual triggering
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(sched *scheduler.Scheduler, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
		logger:    log,
	}
}

// jobStatus is the per-job view returned by GetJobs
type jobStatus struct {
	Name        string                `json:"name"`
	SuccessRate float64               `json:"success_rate"`
	LastResults []scheduler.JobResult `json:"last_results"`
}

// GetJobs returns every registered job with its recent history
// GET /api/scheduler/jobs
func (h *SchedulerHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	names := h.scheduler.GetAllJobs()

	jobs := make([]jobStatus, 0, len(names))
	for _, name := range names {
		status := jobStatus{Name: name}
		if history, err := h.scheduler.GetJobHistory(name); err == nil {
			status.SuccessRate = history.GetSuccessRate()
			status.LastResults = history.GetLatestResults(10)
		}
		jobs = append(jobs, status)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(jobs),
		"jobs":  jobs,
	})
}

// RunJob triggers a job outside its schedule
// POST /api/scheduler/jobs/{name}/run
func (h *SchedulerHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.scheduler.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
