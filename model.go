package chatstream

// Model describes one entry of the models listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ListModelsResponse is the body of GET /v1/models.
type ListModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
