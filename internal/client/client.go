package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finqa/internal/domain"
)

const (
	uploadPath   = "/upload-news"
	pipelinePath = "/run-pipeline"
	resetPath    = "/reset-index"
	queryPath    = "/financial-qa"
)

// RequestIDHeader carries the per-invocation correlation id.
const RequestIDHeader = "X-Request-ID"

// Client talks to the ingestion and question-answering backend.
// Requests are sent once; there is no retry and no client-side timeout.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// Config configures the backend client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", cfg.BaseURL, err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  hc,
		log:     cfg.Logger,
	}, nil
}

// UploadNews sends a corpus file as multipart form field "file".
func (c *Client) UploadNews(ctx context.Context, name string, r io.Reader) (domain.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return domain.UploadResult{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return domain.UploadResult{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return domain.UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, &body)
	if err != nil {
		return domain.UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out domain.UploadResult
	if err := c.do(req, &out); err != nil {
		return domain.UploadResult{}, err
	}
	return out, nil
}

// RunPipeline triggers ingestion and indexing. The response is returned as-is.
func (c *Client) RunPipeline(ctx context.Context) (json.RawMessage, error) {
	return c.postEmpty(ctx, pipelinePath)
}

// ResetIndex clears the backend index. The response is returned as-is.
func (c *Client) ResetIndex(ctx context.Context) (json.RawMessage, error) {
	return c.postEmpty(ctx, resetPath)
}

// FinancialQA asks a question. The query must already be trimmed.
func (c *Client) FinancialQA(ctx context.Context, q string) (domain.QueryResponse, error) {
	u := c.baseURL + queryPath + "?" + url.Values{"q": {q}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.QueryResponse{}, err
	}
	var out domain.QueryResponse
	if err := c.do(req, &out); err != nil {
		return domain.QueryResponse{}, err
	}
	out.Normalize()
	return out, nil
}

func (c *Client) postEmpty(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends the request and decodes the JSON body into out. The body is
// decoded whatever the status code; a body that is not JSON is an error.
func (c *Client) do(req *http.Request, out any) error {
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")

	log := c.log.With().Str("request_id", id).Str("method", req.Method).Str("path", req.URL.Path).Logger()
	log.Debug().Msg("sending request")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("backend returned non-success status")
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading body: %w", req.Method, req.URL.Path, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s %s: decoding %s response: %w", req.Method, req.URL.Path, resp.Status, err)
	}
	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(payload)).Msg("response decoded")
	return nil
}
