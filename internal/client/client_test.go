package client_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvnasc/paginas-semelhantes/internal/client"
	"github.com/lucasvnasc/paginas-semelhantes/internal/metrics"
	"github.com/lucasvnasc/paginas-semelhantes/internal/server"
	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	jobs := service.NewJobManager(service.NewAnalysisService(nil))
	srv := server.New("0", jobs, metrics.NewCollector(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func sampleCSV() string {
	var sb strings.Builder
	sb.WriteString("Landing Page,Query,Url Clicks\n")
	for _, kw := range []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9"} {
		sb.WriteString("https://s.com/a," + kw + ",5\n")
		sb.WriteString("https://s.com/b," + kw + ",8\n")
	}
	return sb.String()
}

func TestClientRoundTrip(t *testing.T) {
	ts := newBackend(t)
	c := client.New(ts.URL)
	ctx := context.Background()

	threshold := 0.8
	job, err := c.Submit(ctx, "export.csv", strings.NewReader(sampleCSV()), client.SubmitOptions{
		Threshold: &threshold,
	})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, 0.8, job.Threshold)

	// Poll until terminal.
	deadline := time.Now().Add(5 * time.Second)
	var final *service.Job
	for time.Now().Before(deadline) {
		final, err = c.GetJob(ctx, job.ID)
		require.NoError(t, err)
		if final.Status.Terminal() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NotNil(t, final)
	require.Equal(t, service.JobStatusCompleted, final.Status)
	require.NotNil(t, final.Result)
	require.Len(t, final.Result.Groups, 1)

	jobs, err := c.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	var buf bytes.Buffer
	require.NoError(t, c.DownloadCSV(ctx, job.ID, &buf))
	assert.Contains(t, buf.String(), "URL a Manter")
}

func TestClientWatch(t *testing.T) {
	ts := newBackend(t)
	c := client.New(ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job, err := c.Submit(ctx, "export.csv", strings.NewReader(sampleCSV()), client.SubmitOptions{})
	require.NoError(t, err)

	updates, err := c.Watch(ctx, job.ID)
	require.NoError(t, err)

	var last service.Job
	for update := range updates {
		last = update
	}
	require.Equal(t, service.JobStatusCompleted, last.Status)
}

func TestClientErrors(t *testing.T) {
	ts := newBackend(t)
	c := client.New(ts.URL)
	ctx := context.Background()

	_, err := c.GetJob(ctx, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")

	var buf bytes.Buffer
	err = c.DownloadCSV(ctx, "nope", &buf)
	require.Error(t, err)

	_, err = c.Watch(ctx, "nope")
	require.Error(t, err)
}
