package domain

// Vehicle is a delivery vehicle of the fleet.
// Only available vehicles take part in a solve; availability is read at solve time.
type Vehicle struct {
	ID                 int
	RegistrationNumber string
	Color              string
	Make               string
	Capacity           float64
	Available          bool
}

// Capacities returns the capacity of each vehicle, in the given order.
func Capacities(vehicles []*Vehicle) []float64 {
	out := make([]float64, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, v.Capacity)
	}
	return out
}
