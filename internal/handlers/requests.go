package handlers

// PrizeRequest represents a request to create or update a prize
type PrizeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Active      *bool  `json:"active"`
}
