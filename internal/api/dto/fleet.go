package dto

type VehicleResponse struct {
	ID                 int     `json:"id"`
	RegistrationNumber string  `json:"registration_number"`
	Color              string  `json:"color"`
	Make               string  `json:"make"`
	Capacity           float64 `json:"capacity"`
	Availability       bool    `json:"availability"`
}

type ListVehiclesResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}
