package downloads_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/forge-upload/downloads"
	"github.com/input-output-hk/forge-upload/errors"
	"github.com/input-output-hk/forge-upload/multipart"
)

func testFile() *multipart.File {
	return multipart.NewFile("dist/app.zip", []byte("hello"), "application/zip; charset=binary")
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*stub)
		req       downloads.Request
		wantURL   string
		wantErr   error
		wantCalls []string
	}{
		{
			name:    "registers and stores",
			req:     downloads.Request{Repo: "o/r"},
			wantURL: "https://x/y",
			wantCalls: []string{
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
		{
			name: "force deletes matching file first",
			configure: func(s *stub) {
				s.list = []downloads.RemoteFile{{ID: 42, Name: "app.zip"}, {ID: 7, Name: "other.zip"}}
			},
			req:     downloads.Request{Repo: "o/r", Force: true},
			wantURL: "https://x/y",
			wantCalls: []string{
				"GET /repos/o/r/downloads",
				"DELETE /repos/o/r/downloads/42",
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
		{
			name: "force deletes every duplicate",
			configure: func(s *stub) {
				s.list = []downloads.RemoteFile{{ID: 1, Name: "app.zip"}, {ID: 2, Name: "app.zip"}}
			},
			req:     downloads.Request{Repo: "o/r", Force: true},
			wantURL: "https://x/y",
			wantCalls: []string{
				"GET /repos/o/r/downloads",
				"DELETE /repos/o/r/downloads/1",
				"DELETE /repos/o/r/downloads/2",
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
		{
			name: "force without match deletes nothing",
			configure: func(s *stub) {
				s.list = []downloads.RemoteFile{{ID: 7, Name: "other.zip"}}
			},
			req:     downloads.Request{Repo: "o/r", Force: true},
			wantURL: "https://x/y",
			wantCalls: []string{
				"GET /repos/o/r/downloads",
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
		{
			name: "without force existing files are left alone",
			configure: func(s *stub) {
				s.list = []downloads.RemoteFile{{ID: 42, Name: "app.zip"}}
			},
			req:     downloads.Request{Repo: "o/r"},
			wantURL: "https://x/y",
			wantCalls: []string{
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
		{
			name: "failed delete does not stop the upload",
			configure: func(s *stub) {
				s.list = []downloads.RemoteFile{{ID: 42, Name: "app.zip"}}
				s.deleteStatus = http.StatusInternalServerError
			},
			req:     downloads.Request{Repo: "o/r", Force: true},
			wantURL: "https://x/y",
			wantCalls: []string{
				"GET /repos/o/r/downloads",
				"DELETE /repos/o/r/downloads/42",
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
		{
			name:      "failed listing aborts",
			configure: func(s *stub) { s.listStatus = http.StatusNotFound },
			req:       downloads.Request{Repo: "o/r", Force: true},
			wantErr:   downloads.ErrListRejected,
			wantCalls: []string{"GET /repos/o/r/downloads"},
		},
		{
			name: "name collision never reaches storage",
			configure: func(s *stub) {
				s.createStatus = http.StatusUnprocessableEntity
				s.createBody = `{"message":"Validation Failed"}`
			},
			req:       downloads.Request{Repo: "o/r"},
			wantErr:   downloads.ErrAlreadyExists,
			wantCalls: []string{"POST /repos/o/r/downloads"},
		},
		{
			name:      "registration server error",
			configure: func(s *stub) { s.createStatus = http.StatusInternalServerError },
			req:       downloads.Request{Repo: "o/r"},
			wantErr:   downloads.ErrRegistrationRejected,
			wantCalls: []string{"POST /repos/o/r/downloads"},
		},
		{
			name:      "storage rejects",
			configure: func(s *stub) { s.storeStatus = http.StatusForbidden },
			req:       downloads.Request{Repo: "o/r"},
			wantErr:   downloads.ErrStorageRejected,
			wantCalls: []string{
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
		{
			name:      "storage answering 200 is a failure",
			configure: func(s *stub) { s.storeStatus = http.StatusOK },
			req:       downloads.Request{Repo: "o/r"},
			wantErr:   downloads.ErrStorageRejected,
			wantCalls: []string{
				"POST /repos/o/r/downloads",
				"POST /storage",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStub(t, tt.configure)

			url, err := s.client(t).Upload(context.Background(), tt.req, testFile())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, url)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
			assert.Equal(t, tt.wantCalls, s.calls())
		})
	}
}

func TestUpload_Metadata(t *testing.T) {
	tests := []struct {
		name string
		req  downloads.Request
		want map[string]any
	}{
		{
			name: "name defaults to basename",
			req:  downloads.Request{Repo: "o/r"},
			want: map[string]any{
				"name":         "app.zip",
				"size":         "5",
				"description":  "",
				"content_type": "application/zip",
			},
		},
		{
			name: "explicit name and description",
			req:  downloads.Request{Repo: "o/r", Name: "release.zip", Description: "v1.0"},
			want: map[string]any{
				"name":         "release.zip",
				"size":         "5",
				"description":  "v1.0",
				"content_type": "application/zip",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStub(t, nil)

			_, err := s.client(t).Upload(context.Background(), tt.req, testFile())
			require.NoError(t, err)

			req, ok := s.find(http.MethodPost, "/repos/o/r/downloads")
			require.True(t, ok)

			var got map[string]any
			require.NoError(t, json.Unmarshal(req.Body, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpload_ForceMatchesExplicitName(t *testing.T) {
	s := newStub(t, func(s *stub) {
		s.list = []downloads.RemoteFile{{ID: 1, Name: "app.zip"}, {ID: 2, Name: "release.zip"}}
	})

	_, err := s.client(t).Upload(context.Background(),
		downloads.Request{Repo: "o/r", Name: "release.zip", Force: true}, testFile())
	require.NoError(t, err)

	_, deleted := s.find(http.MethodDelete, "/repos/o/r/downloads/2")
	assert.True(t, deleted)
	_, kept := s.find(http.MethodDelete, "/repos/o/r/downloads/1")
	assert.False(t, kept)
}

func TestUpload_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		repo string
		file *multipart.File
	}{
		{name: "no file", repo: "o/r"},
		{name: "empty repo", repo: "", file: testFile()},
		{name: "no slash", repo: "repo", file: testFile()},
		{name: "too many segments", repo: "o/r/x", file: testFile()},
		{name: "empty owner", repo: "/r", file: testFile()},
		{name: "dot segment", repo: "o/..", file: testFile()},
		{name: "query characters", repo: "o/r?x", file: testFile()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStub(t, nil)

			_, err := s.client(t).Upload(context.Background(), downloads.Request{Repo: tt.repo}, tt.file)
			require.Error(t, err)
			assert.ErrorIs(t, err, downloads.ErrInvalidRequest)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Empty(t, s.calls())
		})
	}
}

func TestUpload_Logging(t *testing.T) {
	s := newStub(t, func(s *stub) {
		s.list = []downloads.RemoteFile{{ID: 42, Name: "app.zip"}}
		s.deleteStatus = http.StatusForbidden
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := s.client(t, downloads.WithLogger(logger)).Upload(context.Background(),
		downloads.Request{Repo: "o/r", Force: true}, testFile())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "deleting existing file")
	assert.Contains(t, out, "id=42")
	assert.Contains(t, out, "level=WARN")
	assert.NotContains(t, out, "level=DEBUG")
}
