package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"vrp-solver-service/internal/api/dto"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/ports"
	"vrp-solver-service/internal/worker"
)

const (
	solveAcceptedMessage = "The task started. Please return after specified time-limit to receive the solution."
	noSolutionMessage    = "The solution does not exists. Please make sure you have already requested the instance to be solved."
)

// SolveHandler triggers background solves and serves their results.
type SolveHandler struct {
	Batches     ports.BatchRepository
	Solutions   ports.SolutionRepository
	Distributor worker.TaskDistributor
	// MaxTimeLimit caps the time_limit path value, in seconds.
	MaxTimeLimit int
}

// Solve enqueues a solve of the batch and returns 202 without waiting for it.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	batchName := r.PathValue("batch_name")

	timeLimit, err := strconv.Atoi(r.PathValue("time_limit"))
	if err != nil || timeLimit <= 0 {
		writeError(w, r, http.StatusBadRequest, "time_limit must be a positive integer number of seconds")
		return
	}
	if h.MaxTimeLimit > 0 && timeLimit > h.MaxTimeLimit {
		writeError(w, r, http.StatusBadRequest, "time_limit must not exceed "+strconv.Itoa(h.MaxTimeLimit)+" seconds")
		return
	}

	if _, err := h.Batches.GetBatchByName(r.Context(), batchName); err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			writeError(w, r, http.StatusNotFound, "batch not found")
			return
		}
		writeInternalError(w, r, "solve: get batch", err)
		return
	}

	err = h.Distributor.DistributeTaskSolveBatch(r.Context(), &worker.PayloadSolveBatch{
		BatchName:        batchName,
		TimeLimitSeconds: timeLimit,
		RequestID:        requestID(r),
	})
	if errors.Is(err, domain.ErrSolveInFlight) {
		writeError(w, r, http.StatusConflict, domain.ErrSolveInFlight.Error())
		return
	}
	if err != nil {
		writeInternalError(w, r, "solve: enqueue", err)
		return
	}

	writeJSON(w, r, http.StatusAccepted, dto.SolveAcceptedResponse{
		Message:   solveAcceptedMessage,
		TimeLimit: timeLimit,
	})
}

// Solution returns the stored solution of the batch, or a message when none exists yet.
func (h *SolveHandler) Solution(w http.ResponseWriter, r *http.Request) {
	batchName := r.PathValue("batch_name")

	if _, err := h.Batches.GetBatchByName(r.Context(), batchName); err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			writeError(w, r, http.StatusNotFound, "batch not found")
			return
		}
		writeInternalError(w, r, "solution: get batch", err)
		return
	}

	sol, err := h.Solutions.GetSolutionByBatch(r.Context(), batchName)
	if errors.Is(err, domain.ErrSolutionNotFound) {
		writeJSON(w, r, http.StatusOK, dto.MessageResponse{Message: noSolutionMessage})
		return
	}
	if err != nil {
		writeInternalError(w, r, "solution: get solution", err)
		return
	}

	res := dto.SolutionResponse{
		BatchName:     sol.BatchName,
		Routes:        sol.Routes,
		TotalDistance: sol.TotalDistance,
		TotalLoad:     sol.TotalLoad,
	}
	if res.Routes == nil {
		res.Routes = []string{}
	}
	if sol.SolverStatus != nil {
		status := int(*sol.SolverStatus)
		res.SolverStatus = &status
	}

	writeJSON(w, r, http.StatusOK, res)
}
