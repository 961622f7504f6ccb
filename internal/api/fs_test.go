package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/craftdeck/craftdeck/internal/config"
)

func newTestClient(t *testing.T, baseURL, serverID string) *Client {
	t.Helper()
	c, err := NewClient(&config.Config{
		PanelURL: baseURL,
		APIKey:   "test-key",
		ServerID: serverID,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFSURLDeploymentModes(t *testing.T) {
	scoped := newTestClient(t, "https://panel.example.com/", "abc123")
	if got := scoped.fsURL("files"); got != "https://panel.example.com/api/server/abc123/fs/files" {
		t.Errorf("scoped fsURL = %q", got)
	}
	legacy := newTestClient(t, "https://panel.example.com", "")
	if got := legacy.fsURL("files"); got != "https://panel.example.com/api/fs/files" {
		t.Errorf("legacy fsURL = %q", got)
	}
}

func TestListDecodesEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/server/s1/fs/files" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("path"); got != "/plugins" {
			t.Errorf("path query = %q", got)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"parent": "/",
			"entries": [
				{"name": "config.yml", "path": "\\plugins/config.yml", "size": 128,
				 "directory": false,
				 "last_modified": {"secs_since_epoch": 10, "nanos_since_epoch": 500000000}},
				{"name": "data", "path": "plugins/data", "directory": true}
			]
		}`)
	}))
	defer srv.Close()

	listing, err := newTestClient(t, srv.URL, "s1").List(context.Background(), "/plugins")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.ParentPath == nil || *listing.ParentPath != "/" {
		t.Errorf("ParentPath = %v", listing.ParentPath)
	}
	if len(listing.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(listing.Entries))
	}
	first := listing.Entries[0]
	if first.Path != "plugins/config.yml" {
		t.Errorf("Path = %q, want leading separator stripped", first.Path)
	}
	if first.ModifiedAt.UnixMilli() != 10500 {
		t.Errorf("ModifiedAt = %d ms, want 10500", first.ModifiedAt.UnixMilli())
	}
	if second := listing.Entries[1]; second.TypeLabel != "Folder" {
		t.Errorf("TypeLabel = %q, want Folder", second.TypeLabel)
	}
}

func TestListErrorPrecedence(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"json error field", http.StatusConflict, `{"error":"directory is locked"}`, "directory is locked"},
		{"raw body text", http.StatusBadRequest, "malformed path", "malformed path"},
		{"synthesized status", http.StatusNotFound, "", "404 Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, "s1").List(context.Background(), "/")
			if err == nil {
				t.Fatal("List succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q in it", err, tt.want)
			}
		})
	}
}

func TestMutationRequestShapes(t *testing.T) {
	type captured struct {
		method string
		path   string
		body   map[string]interface{}
	}
	var got captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = captured{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&got.body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "s1")
	ctx := context.Background()

	if err := c.Copy(ctx, []string{"a.txt", "b.txt"}, "/backup"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if got.method != http.MethodPost || got.path != "/api/server/s1/fs/copy" {
		t.Errorf("copy request = %s %s", got.method, got.path)
	}
	if got.body["path"] != "/backup" {
		t.Errorf("copy path = %v", got.body["path"])
	}

	if err := c.Move(ctx, []string{"a.txt"}, "/old"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got.path != "/api/server/s1/fs/move" {
		t.Errorf("move path = %s", got.path)
	}

	if err := c.Rename(ctx, "/old.txt", "\\new.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got.body["source"] != "old.txt" || got.body["destination"] != "new.txt" {
		t.Errorf("rename body = %v, want leading separators stripped", got.body)
	}

	if err := c.Delete(ctx, []string{"logs/old.log"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got.method != http.MethodDelete || got.path != "/api/server/s1/fs/" {
		t.Errorf("delete request = %s %s", got.method, got.path)
	}
	if paths, ok := got.body["paths"].([]interface{}); !ok || len(paths) != 1 || paths[0] != "logs/old.log" {
		t.Errorf("delete body = %v", got.body)
	}

	if err := c.Create(ctx, "/worlds/nether", true); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.path != "/api/server/s1/fs/new" {
		t.Errorf("create path = %s", got.path)
	}
	if got.body["path"] != "worlds/nether" || got.body["is_directory"] != true {
		t.Errorf("create body = %v", got.body)
	}
}

func TestReadWriteFileContents(t *testing.T) {
	var wroteBody, wroteType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/server/s1/fs/contents" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("filepath"); got != "server.properties" {
			t.Errorf("filepath = %q", got)
		}
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, "motd=Hello")
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			wroteBody = string(body)
			wroteType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "s1")
	content, err := c.ReadFile(context.Background(), "server.properties")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if content != "motd=Hello" {
		t.Errorf("content = %q", content)
	}

	if err := c.WriteFile(context.Background(), "server.properties", "motd=Welcome"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if wroteBody != "motd=Welcome" {
		t.Errorf("written body = %q", wroteBody)
	}
	if wroteType != "text/plain" {
		t.Errorf("written content type = %q", wroteType)
	}
}

func TestDownloadURL(t *testing.T) {
	c := newTestClient(t, "https://panel.example.com", "s1")
	got := c.DownloadURL([]string{"world", "server.jar"}, "/")
	want := "https://panel.example.com/api/server/s1/fs/download?cwd=%2F&items=world%2Cserver.jar"
	if got != want {
		t.Errorf("DownloadURL = %q, want %q", got, want)
	}
}
