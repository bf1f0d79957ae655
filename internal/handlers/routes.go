package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// NewAPIConfig returns the huma config used by the service.
// Schema links are disabled so response bodies carry only their documented fields.
func NewAPIConfig(title, version string) huma.Config {
	config := huma.DefaultConfig(title, version)
	config.CreateHooks = nil

	return config
}

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "shorten",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Derives a short code from the URL and stores it with an expiry. Shortening the same URL again keeps the first expiry.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, urlHandler.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "get-analytics",
		Method:      http.MethodGet,
		Path:        "/analytics/{code}",
		Summary:     "Get short URL analytics",
		Description: "Returns the original URL, its validity window and every recorded access.",
		Tags:        []string{"Analytics"},
	}, urlHandler.Analytics)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL and records the access. Expired codes return 410.",
		Tags:        []string{"URLs"},
	}, urlHandler.Redirect)
}
