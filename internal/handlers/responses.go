package handlers

// PrizeCreatedResponse is the response for prize creation
type PrizeCreatedResponse struct {
	ID int64 `json:"id"`
}

// HealthResponse reports service and database reachability
type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}
