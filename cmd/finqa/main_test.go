package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type testEnv struct {
	configPath string
	statePath  string
	dir        string
	hits       atomic.Int32
}

// newTestEnv writes a config pointing at a test backend. A nil handler leaves
// the base URL pointing at a closed server.
func newTestEnv(t *testing.T, h http.HandlerFunc) *testEnv {
	t.Helper()
	env := &testEnv{dir: t.TempDir()}
	env.statePath = filepath.Join(env.dir, "state.yaml")
	env.configPath = filepath.Join(env.dir, "config.yaml")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.hits.Add(1)
		h(w, r)
	}))
	baseURL := srv.URL
	if h == nil {
		srv.Close()
	} else {
		t.Cleanup(srv.Close)
	}

	cfg := fmt.Sprintf("backend:\n  base_url: %s\nstate_file: %s\nlog:\n  level: error\n", baseURL, env.statePath)
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.statePath, []byte("theme: light\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func (env *testEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", env.configPath}, args...))
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func answerHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/financial-qa" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "outlook for AAA" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(`{"status":"ok","answer":{
			"summary":{"question":"outlook for AAA","top_tickers":["AAA"]},
			"confidence":0.8,
			"risks":["rates"],
			"context":[{"ticker":"AAA","title":"<beat>","sentiment":0.2}]}}`))
	}
}

func TestAskHTML(t *testing.T) {
	env := newTestEnv(t, answerHandler(t))

	stdout, _, err := env.run(t, "ask", "--html", "outlook", "for", "AAA")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.SplitN(stdout, "\n", 2)
	if lines[0] != "Searching..." {
		t.Errorf("first line = %q, want the placeholder", lines[0])
	}
	for _, want := range []string{
		`<strong>Question:</strong> outlook for AAA`,
		`<span class="ticker">AAA</span> &lt;beat&gt;`,
		`<span class="sentiment positive">0.20</span>`,
		"<ul class=\"risks\">\n<li>rates</li>",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestAskTerminal(t *testing.T) {
	env := newTestEnv(t, answerHandler(t))

	stdout, _, err := env.run(t, "ask", "--quiet", "outlook for AAA")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stdout, "Searching...") {
		t.Error("quiet output should skip the placeholder")
	}
	for _, want := range []string{"Question:", "outlook for AAA", "Confidence:", "0.8", "rates"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestAskValidationFailure(t *testing.T) {
	env := newTestEnv(t, answerHandler(t))

	stdout, stderr, err := env.run(t, "ask", "  ab ")
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want a reported error", err)
	}
	if !strings.Contains(stderr, "alert: Question must be at least 3 characters") {
		t.Errorf("stderr = %q", stderr)
	}
	if stdout != "" || env.hits.Load() != 0 {
		t.Errorf("nothing should be sent or printed: stdout=%q hits=%d", stdout, env.hits.Load())
	}
}

func TestRunPipeline(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/run-pipeline" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"processed":3}`))
	})

	stdout, _, err := env.run(t, "run")
	if err != nil {
		t.Fatal(err)
	}
	want := "Running pipeline...\n{\n  \"processed\": 3\n}\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestResetWithoutPrompt(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reset-index" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"cleared"}`))
	})

	stdout, _, err := env.run(t, "reset", "--yes", "--quiet")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "{\n  \"status\": \"cleared\"\n}\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload-news" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading form file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Close()
		if hdr.Filename != "news.jsonl" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		w.Write([]byte(`{"status":"ok","count":2}`))
	})
	path := filepath.Join(env.dir, "news.jsonl")
	if err := os.WriteFile(path, []byte("{\"a\":1}\n{\"a\":2}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"with progress", []string{"upload", path}},
		{"without progress", []string{"upload", "--no-progress", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := env.run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if stdout != "Uploading...\nUploaded: ok, 2 items\n" {
				t.Errorf("stdout = %q", stdout)
			}
		})
	}
}

func TestUploadRejectsExtension(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	path := filepath.Join(env.dir, "news.csv")
	if err := os.WriteFile(path, []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := env.run(t, "upload", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want a reported error", err)
	}
	if !strings.Contains(stderr, "alert: Only .jsonl and .txt files are supported") {
		t.Errorf("stderr = %q", stderr)
	}
	if env.hits.Load() != 0 {
		t.Errorf("backend was called %d times", env.hits.Load())
	}
}

func TestTransportFailureIsReported(t *testing.T) {
	env := newTestEnv(t, nil)

	stdout, stderr, err := env.run(t, "run")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, errReported) {
		t.Errorf("transport failure should count as reported: %v", err)
	}
	if stdout != "Running pipeline...\nPipeline failed\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "pipeline") {
		t.Errorf("failure not logged: %q", stderr)
	}
}

func TestThemeToggle(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	stdout, _, err := env.run(t, "theme", "toggle")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "dark\n" {
		t.Errorf("toggle printed %q", stdout)
	}
	data, err := os.ReadFile(env.statePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "theme: dark") {
		t.Errorf("state file = %q", data)
	}

	stdout, _, err = env.run(t, "theme", "show")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "dark\n" {
		t.Errorf("show printed %q", stdout)
	}
	if env.hits.Load() != 0 {
		t.Error("theme commands must not call the backend")
	}
}

func TestConfigErrorIsNotReported(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := os.WriteFile(env.configPath, []byte("backend: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := env.run(t, "run")
	if err == nil {
		t.Fatal("expected a config error")
	}
	if errors.Is(err, errReported) {
		t.Error("config errors have not been shown yet and must be printed by main")
	}
}
