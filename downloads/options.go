package downloads

import (
	"log/slog"
	"net/http"
)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL            string
	token              string
	httpClient         *http.Client
	logger             *slog.Logger
	insecureSkipVerify bool
}

// Option is a functional option for configuring the Client.
type Option func(*clientOptions)

// WithBaseURL sets the API root, e.g. "https://api.github.com".
func WithBaseURL(baseURL string) Option {
	return func(opts *clientOptions) {
		opts.baseURL = baseURL
	}
}

// WithToken sets the API token sent as "Authorization: token <token>".
// An empty token sends unauthenticated requests.
func WithToken(token string) Option {
	return func(opts *clientOptions) {
		opts.token = token
	}
}

// WithHTTPClient sets the HTTP client used for every request. The client is
// copied and never follows redirects.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

// WithLogger configures the client with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(opts *clientOptions) {
		opts.insecureSkipVerify = skip
	}
}

// defaultOptions returns the default configuration options.
func defaultOptions() *clientOptions {
	return &clientOptions{
		baseURL: DefaultBaseURL,
	}
}

// applyOptions applies the given options to the client options.
func applyOptions(opts *clientOptions, options []Option) {
	for _, option := range options {
		option(opts)
	}
}
