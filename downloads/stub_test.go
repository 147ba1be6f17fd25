package downloads_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/forge-upload/downloads"
)

type request struct {
	Method      string
	Path        string
	Auth        string
	ContentType string
	Body        []byte
}

// stub is an https test double of the API and its storage endpoint.
type stub struct {
	list         []downloads.RemoteFile
	listStatus   int
	deleteStatus int
	createStatus int
	createBody   string
	storeStatus  int
	storeBody    string

	mu       sync.Mutex
	requests []request
	server   *httptest.Server
}

func newStub(t *testing.T, configure func(*stub)) *stub {
	t.Helper()

	s := &stub{
		listStatus:   http.StatusOK,
		deleteStatus: http.StatusNoContent,
		createStatus: http.StatusCreated,
		storeStatus:  http.StatusCreated,
	}
	if configure != nil {
		configure(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/downloads", func(w http.ResponseWriter, r *http.Request) {
		s.record(t, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.listStatus)
		if s.listStatus != http.StatusOK {
			_, _ = io.WriteString(w, `{"message":"Not Found"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(s.list)
	})
	mux.HandleFunc("DELETE /repos/{owner}/{repo}/downloads/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.record(t, r)
		w.WriteHeader(s.deleteStatus)
	})
	mux.HandleFunc("POST /repos/{owner}/{repo}/downloads", func(w http.ResponseWriter, r *http.Request) {
		s.record(t, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.createStatus)

		body := s.createBody
		if body == "" && s.createStatus == http.StatusCreated {
			body = registrationJSON("https://" + r.Host + "/storage")
		}
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("POST /storage", func(w http.ResponseWriter, r *http.Request) {
		s.record(t, r)
		w.WriteHeader(s.storeStatus)
		_, _ = io.WriteString(w, s.storeBody)
	})

	s.server = httptest.NewTLSServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *stub) record(t *testing.T, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Errorf("read request body: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, request{
		Method:      r.Method,
		Path:        r.URL.Path,
		Auth:        r.Header.Get("Authorization"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
}

// calls returns "METHOD /path" for every request received so far.
func (s *stub) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (s *stub) find(method, path string) (request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return request{}, false
}

func (s *stub) client(t *testing.T, opts ...downloads.Option) *downloads.Client {
	t.Helper()

	all := append([]downloads.Option{
		downloads.WithBaseURL(s.server.URL),
		downloads.WithHTTPClient(s.server.Client()),
	}, opts...)

	c, err := downloads.NewClient(all...)
	require.NoError(t, err)
	return c
}

func registrationJSON(storageURL string) string {
	return fmt.Sprintf(`{
		"html_url": "https://x/y",
		"s3_url": %q,
		"path": "downloads/o/r/app.zip",
		"acl": "public-read",
		"accesskeyid": "AKID",
		"policy": "cG9saWN5",
		"signature": "c2ln",
		"mime_type": "application/zip",
		"name": "app.zip"
	}`, storageURL)
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
