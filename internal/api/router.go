package api

import (
	"net/http"
	"vrp-solver-service/internal/api/handlers"
	"vrp-solver-service/internal/platform/metrics"
	"vrp-solver-service/internal/ports"
	"vrp-solver-service/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps holds what the HTTP surface needs; handlers stay unaware of concrete adapters.
type RouterDeps struct {
	Batches      ports.BatchRepository
	Vehicles     ports.VehicleRepository
	Solutions    ports.SolutionRepository
	Distributor  worker.TaskDistributor
	MaxTimeLimit int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	vehicleHandler := &handlers.VehicleHandler{Repo: deps.Vehicles}
	batchHandler := &handlers.BatchHandler{Repo: deps.Batches}
	solveHandler := &handlers.SolveHandler{
		Batches:      deps.Batches,
		Solutions:    deps.Solutions,
		Distributor:  deps.Distributor,
		MaxTimeLimit: deps.MaxTimeLimit,
	}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /vehicles", vehicleHandler.List)
	mux.HandleFunc("GET /vehicles/{id}", vehicleHandler.Get)
	mux.HandleFunc("GET /batches", batchHandler.ListBatches)
	mux.HandleFunc("GET /customers", batchHandler.ListCustomers)
	mux.HandleFunc("GET /addresses", batchHandler.ListAddresses)

	mux.HandleFunc("GET /solve/{batch_name}/{time_limit}", solveHandler.Solve)
	mux.HandleFunc("GET /solution/{batch_name}", solveHandler.Solution)

	return requestIDMiddleware(observeMiddleware(mux))
}
