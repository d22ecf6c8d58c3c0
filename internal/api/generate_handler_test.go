package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/examples"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/mocks"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/phrazzld/ankigen/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, client generation.ModelClient) *httptest.Server {
	t.Helper()

	outDir := t.TempDir()
	loader, err := examples.NewLoader(testLogger(), t.TempDir())
	require.NoError(t, err)

	svc, err := service.NewGenerationService(testLogger(), client, loader, nil, config.GenerationConfig{
		MaxCards:          100,
		MaxIterations:     5,
		CardsPerIteration: 5,
		ExamplesDir:       t.TempDir(),
		DeckOutputDir:     outDir,
		PreviewOutputDir:  outDir,
	})
	require.NoError(t, err)

	runner, err := task.NewRunner(testLogger(), svc)
	require.NoError(t, err)
	t.Cleanup(runner.Stop)

	srv := httptest.NewServer(NewRouter(testLogger(), runner, svc))
	t.Cleanup(srv.Close)
	return srv
}

func topicClient() *mocks.FuncModelClient {
	return &mocks.FuncModelClient{
		Fn: func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Generate an Anki flashcard for concept") {
				return `{"front_question_text": "Q", "back_answer": "A"}`, nil
			}
			return `["c1"]`, nil
		},
	}
}

func postGenerate(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mocks.StaticModelClient{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartRunAcceptsAndCompletes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, topicClient())

	resp := postGenerate(t, srv, `{"topic": "Addition", "num_cards": 1, "preview": true}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	accepted := decodeBody[GenerateResponse](t, resp)
	require.NotEmpty(t, accepted.RunID)
	assert.Equal(t, "pending", accepted.Status)

	// Poll until the background run finishes.
	deadline := time.After(5 * time.Second)
	for {
		resp, err := http.Get(srv.URL + "/api/runs/" + accepted.RunID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		run := decodeBody[RunResponse](t, resp)
		if run.Status == "completed" {
			assert.Equal(t, 1, run.CardCount)
			assert.NotEmpty(t, run.OutputPath)
			return
		}
		if run.Status == "failed" {
			t.Fatalf("run failed: %s", run.Error)
		}
		select {
		case <-deadline:
			t.Fatalf("run never completed (last status %s)", run.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartRunValidation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mocks.StaticModelClient{})

	cases := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{`},
		{"missing topic", `{"num_cards": 5}`},
		{"zero cards", `{"topic": "Math", "num_cards": 0}`},
		{"too many cards", `{"topic": "Math", "num_cards": 51}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postGenerate(t, srv, tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestStartRunConflictWhileActive(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	blocking := &mocks.FuncModelClient{
		Fn: func(ctx context.Context, _ string) (string, error) {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return "", ctx.Err()
		},
	}
	srv := newTestServer(t, blocking)

	first := postGenerate(t, srv, `{"topic": "Addition", "num_cards": 1}`)
	defer first.Body.Close()
	require.Equal(t, http.StatusAccepted, first.StatusCode)

	second := postGenerate(t, srv, `{"topic": "Subtraction", "num_cards": 1}`)
	defer second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mocks.StaticModelClient{})

	resp, err := http.Get(srv.URL + "/api/runs/0b974bd6-313e-4bf5-b517-a3b2aae0a2c5")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/runs/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTemplates(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mocks.StaticModelClient{})

	resp, err := http.Get(srv.URL + "/api/templates")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "basic", payload["default"])
	assert.Contains(t, payload["templates"], "basic")
}

func TestListDomainsEmpty(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mocks.StaticModelClient{})

	resp, err := http.Get(srv.URL + "/api/domains")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeBody[map[string][]string](t, resp)
	assert.Empty(t, payload["domains"])
}
