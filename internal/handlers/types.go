package handlers

// ShortenRequest is the request body for creating a short URL.
type ShortenRequest struct {
	Body struct {
		_      struct{} `additionalProperties:"true"`
		URL    any      `doc:"The URL to shorten, a string starting with http:// or https://" json:"url,omitempty"`
		Expiry *int     `doc:"Lifetime in hours, 24 when omitted"                             example:"24" json:"expiry,omitempty"`
	} `required:"false"`
}

// ShortenResponse is the response for a successfully created short URL.
type ShortenResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		ShortURL string `doc:"The full short URL" example:"http://127.0.0.1:5000/c984d0" json:"short_url"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"c984d0" path:"code"`
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}

// AnalyticsRequest is the request for a short URL's analytics.
type AnalyticsRequest struct {
	Code string `doc:"The short code" example:"c984d0" path:"code"`
}

// AccessLog is one resolution of a short URL.
type AccessLog struct {
	Timestamp int64  `doc:"Unix seconds"            json:"timestamp"`
	IPAddress string `doc:"Requester network address" json:"ip_address"`
}

// AnalyticsResponse describes a short URL and every recorded access.
type AnalyticsResponse struct {
	Body struct {
		OriginalURL         string      `json:"original_url"`
		CreationTimestamp   int64       `doc:"Unix seconds" json:"creation_timestamp"`
		ExpirationTimestamp int64       `doc:"Unix seconds" json:"expiration_timestamp"`
		AccessLogs          []AccessLog `json:"access_logs"`
	}
}
