package di

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/linkedin"
	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeX serves one user with one recent post
func fakeX(t *testing.T) *httptest.Server {
	t.Helper()
	created := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/2/users/by/username/alice":
			fmt.Fprint(w, `{"data":{"id":"42","name":"Alice","username":"alice"}}`)
		case r.URL.Path == "/2/users/42/tweets":
			fmt.Fprintf(w, `{"data":[{"id":"9","text":"Agents in production","created_at":%q,"public_metrics":{"like_count":3}}],"meta":{"result_count":1}}`, created)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testParams(t *testing.T, xURL string) config.Params {
	return config.Params{
		FallbackProfiles: []string{"alice"},
		MaxAttempts:      3,
		DataDir:          t.TempDir(),
		X:                config.XConfig{BearerToken: "token", BaseURL: xURL, RequestsPerMinute: 600},
		Agent:            config.AgentConfig{Type: "mock"},
		Research:         config.ResearchConfig{MaxSearches: 1},
		Review:           config.ReviewConfig{Mode: "console", DefaultVerdict: "approved"},
		History:          config.HistoryConfig{Driver: "sqlite"},
		Storage:          config.StorageConfig{Type: "local", BaseDir: "/data"},
	}
}

func TestContainer_DryRunPublishesLocally(t *testing.T) {
	server := fakeX(t)
	var stdout bytes.Buffer

	c, err := NewContainer(context.Background(), config.NewAppConfig(testParams(t, server.URL)), Options{
		Stdout:   &stdout,
		Fs:       afero.NewMemMapFs(),
		Logger:   app.NopLogger{},
		DryRun:   true,
		Verdicts: []review.Verdict{review.Reject("more concrete"), review.Approve("")},
	})
	require.NoError(t, err)
	defer c.Close()

	out, err := c.FlowUseCase().Execute(context.Background(), dto.KickoffInput{})
	require.NoError(t, err)

	assert.Equal(t, "published", out.Outcome)
	assert.Equal(t, linkedin.DryRunMessage, out.Payload)
	assert.Equal(t, 2, out.Attempts)
	assert.Contains(t, stdout.String(), "Would publish to LinkedIn")

	sessions, err := c.Recorder().ListSessions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, review.StatePublished, sessions[0].State)

	artifacts, err := c.StorageGateway().ListArtifacts(context.Background(), out.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, artifacts)
}

func TestContainer_MissingLinkedInCredentialsEndsPublished(t *testing.T) {
	server := fakeX(t)
	fs := afero.NewMemMapFs()
	params := testParams(t, server.URL)

	c, err := NewContainer(context.Background(), config.NewAppConfig(params), Options{
		Stdout:   &bytes.Buffer{},
		Fs:       fs,
		Logger:   app.NopLogger{},
		Verdicts: []review.Verdict{review.Approve("")},
	})
	require.NoError(t, err)
	defer c.Close()

	out, err := c.FlowUseCase().Execute(context.Background(), dto.KickoffInput{Profiles: []string{"@alice"}})
	require.NoError(t, err)

	assert.Equal(t, "published", out.Outcome)
	assert.Equal(t, linkedin.MissingTokenMessage, out.Payload)

	got, err := c.Recorder().FindSession(context.Background(), review.SessionID(out.SessionID))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)

	entries, err := afero.ReadDir(fs, "/data/artifacts/"+out.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, entries, "artifacts archived on the configured filesystem")

	journal, err := app.ReadJournal(fs, app.ResolvePaths(params.DataDir).Journal)
	require.NoError(t, err)
	require.Len(t, journal, 3)
	assert.Equal(t, app.StepOutcome, journal[2].Step)
	assert.Equal(t, "PUBLISHED", journal[2].Decision)
}

func TestContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Params)
		want   string
	}{
		{"agent", func(p *config.Params) { p.Agent.Type = "gpt" }, "agent"},
		{"review mode", func(p *config.Params) { p.Review.Mode = "carrier-pigeon" }, "unknown review mode"},
		{"storage", func(p *config.Params) { p.Storage.Type = "ftp" }, "unsupported storage type"},
		{"history", func(p *config.Params) { p.History.Driver = "etcd" }, "invalid history store type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(t, "http://127.0.0.1:0")
			tt.mutate(&p)
			_, err := NewContainer(context.Background(), config.NewAppConfig(p), Options{
				Fs:     afero.NewMemMapFs(),
				Logger: app.NopLogger{},
			})
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}
