package tmdb

// Wire types for the TMDB-style catalog API.

type discoverResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []discoverMovie `json:"results"`
}

type discoverMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type providersResponse struct {
	ID      int64                      `json:"id"`
	Results map[string]regionProviders `json:"results"`
}

type regionProviders struct {
	Link     string     `json:"link"`
	Flatrate []provider `json:"flatrate"`
	Free     []provider `json:"free"`
	Ads      []provider `json:"ads"`
}

type provider struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}
