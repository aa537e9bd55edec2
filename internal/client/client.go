// Package client provides an HTTP client for the analysis server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

// Client talks to a running paginas-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If endpoint is empty, uses the PAGINAS_SERVER_URL
// env var or the default local address.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("PAGINAS_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8090"
	}

	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute, // uploads of large exports
		},
	}
}

// SubmitOptions configures a remote analysis submission.
type SubmitOptions struct {
	Threshold   *float64
	MinKeywords *int
}

// Submit uploads a CSV export and returns the created job.
func (c *Client) Submit(ctx context.Context, name string, csv io.Reader, opts SubmitOptions) (*service.Job, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(fw, csv); err != nil {
		return nil, fmt.Errorf("copy csv: %w", err)
	}
	if opts.Threshold != nil {
		if err := mw.WriteField("threshold", strconv.FormatFloat(*opts.Threshold, 'f', -1, 64)); err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
	}
	if opts.MinKeywords != nil {
		if err := mw.WriteField("min_keywords", strconv.Itoa(*opts.MinKeywords)); err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyses", strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var job service.Job
	if err := c.do(req, http.StatusAccepted, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob fetches the current snapshot of a job.
func (c *Client) GetJob(ctx context.Context, id string) (*service.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var job service.Job
	if err := c.do(req, http.StatusOK, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs fetches snapshots of all jobs, newest first.
func (c *Client) ListJobs(ctx context.Context) ([]service.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/analyses", nil)
	if err != nil {
		return nil, err
	}

	var jobs []service.Job
	if err := c.do(req, http.StatusOK, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// DownloadCSV streams the results CSV of a completed job into w.
func (c *Client) DownloadCSV(ctx context.Context, id string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/analyses/"+url.PathEscape(id)+"/csv", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download results: %w", err)
	}
	return nil
}

// Watch subscribes to job progress over websocket. Updates arrive on the
// returned channel until the job reaches a terminal state or ctx is
// cancelled; the channel is closed afterwards.
func (c *Client) Watch(ctx context.Context, id string) (<-chan service.Job, error) {
	wsURL, err := c.websocketURL("/api/analyses/" + url.PathEscape(id) + "/ws")
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe to job %s: %w", id, err)
	}

	updates := make(chan service.Job)
	go func() {
		defer close(updates)
		defer conn.Close()

		for {
			var job service.Job
			if err := conn.ReadJSON(&job); err != nil {
				return
			}
			select {
			case updates <- job:
			case <-ctx.Done():
				return
			}
			if job.Status.Terminal() {
				return
			}
		}
	}()

	return updates, nil
}

func (c *Client) websocketURL(path string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String(), nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError extracts the server's error message from a non-2xx response.
func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server: %s (%s)", payload.Error, resp.Status)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
