package handlers

import (
	"errors"
	"net/http"
	"vrp-solver-service/internal/api/dto"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/ports"
)

// BatchHandler exposes read-only batch, customer and address endpoints.
type BatchHandler struct {
	Repo ports.BatchRepository
}

func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.Repo.ListBatches(r.Context())
	if err != nil {
		writeInternalError(w, r, "list batches", err)
		return
	}

	res := dto.ListBatchesResponse{Batches: make([]dto.BatchResponse, 0, len(batches))}
	for _, b := range batches {
		res.Batches = append(res.Batches, dto.BatchResponse{ID: b.ID, BatchName: b.Name})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// ListCustomers returns every customer, or those of ?batch_name= when given.
func (h *BatchHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	var (
		customers []*domain.Customer
		err       error
	)
	if name := r.URL.Query().Get("batch_name"); name != "" {
		customers, err = h.Repo.ListCustomersByBatch(r.Context(), name)
	} else {
		customers, err = h.Repo.ListCustomers(r.Context())
	}
	if errors.Is(err, domain.ErrBatchNotFound) {
		writeError(w, r, http.StatusNotFound, "batch not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "list customers", err)
		return
	}

	res := dto.ListCustomersResponse{Customers: make([]dto.CustomerResponse, 0, len(customers))}
	for _, c := range customers {
		res.Customers = append(res.Customers, dto.CustomerResponse{
			ID:             c.ID,
			Address:        addressResponse(&c.Address),
			CustomerDemand: c.Demand,
			BatchName:      c.BatchName,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *BatchHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.Repo.ListAddresses(r.Context())
	if err != nil {
		writeInternalError(w, r, "list addresses", err)
		return
	}

	res := dto.ListAddressesResponse{Addresses: make([]dto.AddressResponse, 0, len(addresses))}
	for _, a := range addresses {
		res.Addresses = append(res.Addresses, addressResponse(a))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func addressResponse(a *domain.Address) dto.AddressResponse {
	return dto.AddressResponse{
		ID:          a.ID,
		AddressType: string(a.Type),
		Line1:       a.Line1,
		Line2:       a.Line2,
		City:        a.City,
		County:      a.County,
		ZipPostcode: a.ZipPostcode,
	}
}
