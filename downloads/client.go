// Package downloads implements the two-phase file attachment protocol of a
// repository hosting API: a file is first registered with the API, which
// answers with a signed storage descriptor, and then POSTed directly to the
// object-storage endpoint as a multipart/form-data form.
//
// Each step is exposed on Client (List, Delete, Create, Store); Upload runs
// them in order. All requests are sequential and never retried.
package downloads

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/input-output-hk/forge-upload/errors"
	"github.com/input-output-hk/forge-upload/multipart"
)

const (
	// DefaultBaseURL is the API root of the public hosting service.
	DefaultBaseURL = "https://api.github.com"

	// UserAgent is sent with every request.
	UserAgent = "forge-upload"

	maxBodySize     = 10 << 20
	maxErrorExcerpt = 256
)

// Client talks to the file attachment API and the storage endpoints it
// hands out. A Client is configured once and not mutated afterwards.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	logger  *slog.Logger
	encoder *multipart.Encoder
}

// NewClient creates a Client. The base URL must use https.
//
// Example usage:
//
//	client, err := NewClient(
//	    WithToken(token),
//	    WithLogger(slog.Default()),
//	)
func NewClient(opts ...Option) (*Client, error) {
	options := defaultOptions()
	applyOptions(options, opts)

	base, err := parseHTTPS(options.baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := noRedirects(options.httpClient)
	if options.insecureSkipVerify {
		httpClient = insecureClient(httpClient)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL: base,
		token:   options.token,
		http:    httpClient,
		logger:  logger,
		encoder: multipart.NewEncoder(),
	}, nil
}

// List returns the files currently attached to repo.
func (c *Client) List(ctx context.Context, repo string) ([]RemoteFile, error) {
	resp, body, err := c.send(ctx, http.MethodGet, c.downloadsURL(repo), nil, "", true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(ErrListRejected, "list files of "+repo, resp, body, map[string]any{"repo": repo})
	}

	var files []RemoteFile
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, invalidResponse("decode file listing", err, map[string]any{"repo": repo})
	}
	return files, nil
}

// Delete removes the file with the given id from repo.
func (c *Client) Delete(ctx context.Context, repo string, id int64) error {
	u := c.downloadsURL(repo).JoinPath(strconv.FormatInt(id, 10))

	resp, body, err := c.send(ctx, http.MethodDelete, u, nil, "", true)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(ErrDeleteRejected, fmt.Sprintf("delete file %d of %s", id, repo), resp, body,
			map[string]any{"repo": repo, "id": id})
	}
	return nil
}

// Create registers a file with repo and returns the storage descriptor.
// A client error status is reported as ErrAlreadyExists, any other status
// but 201 as ErrRegistrationRejected.
func (c *Client) Create(ctx context.Context, repo string, meta Metadata) (*Registration, error) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode registration")
	}

	resp, body, err := c.send(ctx, http.MethodPost, c.downloadsURL(repo), payload, "application/json", true)
	if err != nil {
		return nil, err
	}

	details := map[string]any{"repo": repo, "name": meta.Name}
	op := fmt.Sprintf("register %q in %s", meta.Name, repo)
	switch {
	case resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		return nil, statusError(ErrAlreadyExists, op, resp, body, details)
	default:
		return nil, statusError(ErrRegistrationRejected, op, resp, body, details)
	}

	var reg Registration
	if err := json.Unmarshal(body, &reg); err != nil {
		return nil, invalidResponse("decode registration", err, details)
	}
	if reg.S3URL == "" || reg.HTMLURL == "" {
		return nil, errors.WrapWithContext(ErrInvalidResponse, errors.CodeInvalidResponse,
			"registration lacks html_url or s3_url", details)
	}
	return &reg, nil
}

// Store uploads file to the storage endpoint described by reg. The request
// carries no Authorization header; the signed policy authorizes it.
func (c *Client) Store(ctx context.Context, reg *Registration, file *multipart.File) error {
	if reg == nil || file == nil {
		return errors.WrapWithContext(ErrInvalidRequest, errors.CodeInvalidInput,
			"store needs a registration and a file", nil)
	}

	u, err := parseHTTPS(reg.S3URL)
	if err != nil {
		return err
	}

	payload, contentType, err := c.encoder.Encode(reg.StorageFields(file))
	if err != nil {
		return errors.Wrap(err, errors.GetCode(err), "encode storage form")
	}

	resp, body, err := c.send(ctx, http.MethodPost, u, payload, contentType, false)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return statusError(ErrStorageRejected, "store "+file.Name(), resp, body,
			map[string]any{"key": reg.Path})
	}
	return nil
}

func (c *Client) downloadsURL(repo string) *url.URL {
	return c.baseURL.JoinPath("repos", repo, "downloads")
}

// send performs one request and returns the response with its body read and
// closed.
func (c *Client) send(
	ctx context.Context,
	method string,
	u *url.URL,
	payload []byte,
	contentType string,
	auth bool,
) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, nil, errors.WrapWithContext(err, errors.CodeInternal, "build request",
			map[string]any{"method": method, "url": u.Redacted()})
	}
	req.Header.Set("User-Agent", UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth && c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	c.logger.DebugContext(ctx, "sending request", "method", method, "url", u.Redacted(), "bytes", len(payload))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.WrapWithContext(err, errors.CodeNetwork, method+" "+u.Redacted(),
			map[string]any{"method": method, "url": u.Redacted()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, errors.WrapWithContext(err, errors.CodeNetwork, "read response of "+method+" "+u.Redacted(),
			map[string]any{"status": resp.StatusCode})
	}

	c.logger.DebugContext(ctx, "received response", "method", method, "url", u.Redacted(), "status", resp.StatusCode)
	return resp, body, nil
}

func parseHTTPS(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid endpoint URL",
			map[string]any{"url": raw})
	}
	if !strings.EqualFold(u.Scheme, "https") || u.Host == "" {
		return nil, errors.WrapWithContext(ErrInsecureURL, errors.CodeInvalidConfig,
			fmt.Sprintf("invalid endpoint URL %q", u.Redacted()), map[string]any{"url": u.Redacted()})
	}
	return u, nil
}

// noRedirects returns a copy of c that hands 3xx responses back to the caller
// instead of following them. A nil c yields a default client.
func noRedirects(c *http.Client) *http.Client {
	var clone http.Client
	if c != nil {
		clone = *c
	}
	clone.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &clone
}

// insecureClient returns a copy of c that skips certificate verification.
// Clients with a custom RoundTripper are returned unchanged.
func insecureClient(c *http.Client) *http.Client {
	var transport *http.Transport
	switch t := c.Transport.(type) {
	case nil:
		if def, ok := http.DefaultTransport.(*http.Transport); ok {
			transport = def.Clone()
		} else {
			transport = &http.Transport{}
		}
	case *http.Transport:
		transport = t.Clone()
	default:
		return c
	}

	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{} //nolint:gosec // verification is disabled below on request
	}
	transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // opt-in via --skip-ssl-verification

	clone := *c
	clone.Transport = transport
	return &clone
}

func statusError(sentinel error, op string, resp *http.Response, body []byte, details map[string]any) error {
	fields := map[string]any{"status": resp.StatusCode}
	maps.Copy(fields, details)

	msg := fmt.Sprintf("%s: unexpected status %s", op, resp.Status)
	if apiMsg := apiMessage(body); apiMsg != "" {
		msg += " (" + apiMsg + ")"
	} else if snippet := excerpt(body); snippet != "" {
		fields["body"] = snippet
	}

	return errors.WrapWithContext(sentinel, errors.GetCode(sentinel), msg, fields)
}

func invalidResponse(op string, cause error, details map[string]any) error {
	return errors.WrapWithContext(ErrInvalidResponse, errors.CodeInvalidResponse,
		fmt.Sprintf("%s: %v", op, cause), details)
}

// apiMessage extracts the "message" member of a JSON error body.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Message
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorExcerpt {
		s = s[:maxErrorExcerpt] + "..."
	}
	return s
}
