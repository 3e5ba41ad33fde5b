package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"vrp-solver-service/internal/api/dto"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/ports"
)

// VehicleHandler exposes read-only fleet endpoints.
type VehicleHandler struct {
	Repo ports.VehicleRepository
}

// List returns the fleet; ?available=true|false filters by availability.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	var available *bool
	if raw := r.URL.Query().Get("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "available must be true or false")
			return
		}
		available = &v
	}

	vehicles, err := h.Repo.ListVehicles(r.Context(), available)
	if err != nil {
		writeInternalError(w, r, "list vehicles", err)
		return
	}

	res := dto.ListVehiclesResponse{
		Vehicles: make([]dto.VehicleResponse, 0, len(vehicles)),
	}
	for _, v := range vehicles {
		res.Vehicles = append(res.Vehicles, vehicleResponse(v))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	v, err := h.Repo.GetVehicle(r.Context(), id)
	if errors.Is(err, domain.ErrVehicleNotFound) {
		writeError(w, r, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "get vehicle", err)
		return
	}

	writeJSON(w, r, http.StatusOK, vehicleResponse(v))
}

func vehicleResponse(v *domain.Vehicle) dto.VehicleResponse {
	return dto.VehicleResponse{
		ID:                 v.ID,
		RegistrationNumber: v.RegistrationNumber,
		Color:              v.Color,
		Make:               v.Make,
		Capacity:           v.Capacity,
		Availability:       v.Available,
	}
}
