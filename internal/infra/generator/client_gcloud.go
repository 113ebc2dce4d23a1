//go:build gcloud

package generator

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/idtoken"
)

// newHTTPClient creates an HTTP client with GCP ID token authentication for
// generator endpoints hosted behind Cloud Run. Endpoints authenticated by API
// key get a plain client since the ID token would replace the key.
func newHTTPClient(baseURL, apiKey string) *http.Client {
	if apiKey != "" {
		return &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	httpClient, err := idtoken.NewClient(context.Background(), baseURL)
	if err != nil {
		slog.Error("failed to create idtoken client, falling back to unauthenticated client",
			slog.String("error", err.Error()),
		)
		return &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	httpClient.Transport = otelhttp.NewTransport(httpClient.Transport)
	return httpClient
}
