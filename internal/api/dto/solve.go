package dto

type SolveAcceptedResponse struct {
	Message string `json:"message"`
	// TimeLimit is the search budget in seconds.
	TimeLimit int `json:"time_limit"`
}

type SolutionResponse struct {
	BatchName     string   `json:"batch_name"`
	Routes        []string `json:"routes"`
	TotalDistance int      `json:"total_distance"`
	TotalLoad     float64  `json:"total_load"`
	SolverStatus  *int     `json:"solver_status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
