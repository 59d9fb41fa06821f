package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reviewsync/internal/config"
	"reviewsync/internal/testsupport"
)

const traktComments = `[
  {"type":"movie","comment":{"id":1,"comment":"Great heist film","spoiler":false,"updated_at":"2024-03-02T10:00:00.000Z","user_rating":8},
   "movie":{"title":"Heat","ids":{"imdb":"tt0113277"}}}
]`

const traktUnresolvable = `[
  {"type":"movie","comment":{"id":7,"comment":"Not on this server","spoiler":false,"updated_at":"2024-03-02T10:00:00.000Z"},
   "movie":{"title":"Thief","ids":{"imdb":"tt0083190"}}}
]`

const plexSections = `{"MediaContainer":{"Directory":[{"key":"1","type":"movie","title":"Movies"}]}}`

const plexMovies = `{"MediaContainer":{"Metadata":[
  {"ratingKey":"100","guid":"plex://movie/heat","type":"movie","title":"Heat","Guid":[{"id":"imdb://tt0113277"}]}]}}`

type cliTestEnv struct {
	cfg         *config.Config
	configPath  string
	comments    atomic.Value
	submissions atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	env.comments.Store(traktComments)

	traktServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/tester/comments" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := env.comments.Load().(string)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(traktServer.Close)

	plexServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library/sections":
			_, _ = w.Write([]byte(plexSections))
		case "/library/sections/1/all":
			_, _ = w.Write([]byte(plexMovies))
		case "/community":
			env.submissions.Add(1)
			_, _ = io.Copy(io.Discard, r.Body)
			_, _ = w.Write([]byte(`{"data":{"createReview":{"status":"PUBLISHED"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(plexServer.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithPlexServer(plexServer.URL), testsupport.WithTraktServer(traktServer.URL))
	base := testsupport.BaseDir(cfg)

	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"PLEX_TOKEN", "PLEX_URL", "TRAKT_CLIENT_ID", "TRAKT_USER_ID", "LOG_FOLDER"} {
		t.Setenv(key, "")
	}

	env.cfg = cfg
	env.configPath = filepath.Join(base, "config.toml")
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
