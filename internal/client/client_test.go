package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/", Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return c
}

func TestUploadNews(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload-news" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("missing request id header")
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading form file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "news.jsonl" || string(data) != "line\n" {
			t.Errorf("got file %q with %q", hdr.Filename, data)
		}
		w.Write([]byte(`{"status":"saved","count":12}`))
	})

	res, err := c.UploadNews(context.Background(), "news.jsonl", strings.NewReader("line\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != "saved" || res.Count != 12 {
		t.Errorf("got %+v", res)
	}
}

func TestUploadNewsCountDefaultsToZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"saved"}`))
	})
	res, err := c.UploadNews(context.Background(), "a.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 0 {
		t.Errorf("count = %d, want 0", res.Count)
	}
}

func TestRunPipelineAndReset(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.ContentLength > 0 {
			t.Errorf("expected empty body, got %d bytes", r.ContentLength)
		}
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"z":1,"a":"b"}`))
	})

	raw, err := c.RunPipeline(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"z":1,"a":"b"}` {
		t.Errorf("raw = %s", raw)
	}
	if _, err := c.ResetIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
	if strings.Join(paths, ",") != "/run-pipeline,/reset-index" {
		t.Errorf("paths = %v", paths)
	}
}

func TestFinancialQA(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/financial-qa" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "what about AAA & BBB?" {
			t.Errorf("q = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"answer": map[string]any{"confidence": 0.5},
		})
	})

	resp, err := c.FinancialQA(context.Background(), "what about AAA & BBB?")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Answer == nil {
		t.Fatalf("got %+v", resp)
	}
	if resp.Answer.Risks == nil || resp.Answer.Context == nil || resp.Answer.Summary.TopTickers == nil {
		t.Error("expected defaults applied at decode time")
	}
	if resp.Answer.Confidence != 0.5 {
		t.Errorf("confidence = %v", resp.Answer.Confidence)
	}
}

func TestFinancialQAMissingAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	resp, err := c.FinancialQA(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer == nil {
		t.Fatal("expected an empty answer for an ok status")
	}
}

func TestErrorStatusWithJSONBodyIsDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","message":"index is empty"}`))
	})
	resp, err := c.FinancialQA(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "error" || resp.Message != "index is empty" {
		t.Errorf("got %+v", resp)
	}
}

func TestNonJSONBodyFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})
	if _, err := c.RunPipeline(context.Background()); err == nil {
		t.Error("expected decode error")
	}
	if _, err := c.FinancialQA(context.Background(), "abc"); err == nil {
		t.Error("expected decode error")
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ResetIndex(context.Background()); err == nil {
		t.Error("expected network error")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty base url")
	}
}
