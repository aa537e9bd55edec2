package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvnasc/paginas-semelhantes/internal/metrics"
	"github.com/lucasvnasc/paginas-semelhantes/internal/parser"
)

// sampleCSV builds an export where /a and /b share the same ten queries and
// /b has the larger click total.
func sampleCSV() string {
	var sb strings.Builder
	sb.WriteString("Landing Page,Query,Url Clicks\n")
	terms := []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9"}
	for i, kw := range terms {
		clicksA, clicksB := "0", "0"
		if i == 0 {
			clicksA, clicksB = "50", "80"
		}
		sb.WriteString("https://s.com/a," + kw + "," + clicksA + "\n")
		sb.WriteString("https://s.com/b," + kw + "," + clicksB + "\n")
	}
	return sb.String()
}

func TestAnalysisRun(t *testing.T) {
	collector := metrics.NewCollector()
	svc := NewAnalysisService(collector)

	result, err := svc.Run(context.Background(), strings.NewReader(sampleCSV()), Options{
		Threshold:   0.8,
		MinKeywords: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 20, result.RowsRead)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 10, result.Keywords)

	require.Len(t, result.Groups, 1)
	g := result.Groups[0]
	assert.Equal(t, "https://s.com/b", g.Representative)
	assert.Equal(t, uint64(80), g.Clicks)
	assert.Equal(t, 10, g.SharedCount)

	snap := collector.Snapshot()
	require.NotNil(t, snap.Analysis)
	assert.Equal(t, int64(1), snap.Analysis.Count)
	require.NotNil(t, snap.Parse)
	assert.Equal(t, int64(20), snap.Parse.TotalItems)
}

func TestAnalysisRun_EmptyInputIsSoft(t *testing.T) {
	svc := NewAnalysisService(nil)

	// Header only: zero pages after filtering yields an empty group list.
	result, err := svc.Run(context.Background(), strings.NewReader("Landing Page,Query,Url Clicks\n"), Options{
		Threshold:   0.8,
		MinKeywords: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Groups)
	assert.Zero(t, result.Pages)
}

func TestAnalysisRun_SchemaErrorFailsFast(t *testing.T) {
	svc := NewAnalysisService(nil)

	_, err := svc.Run(context.Background(), strings.NewReader("wrong,columns\n1,2\n"), Options{
		Threshold:   0.8,
		MinKeywords: 10,
	})
	require.ErrorIs(t, err, parser.ErrMissingColumns)
}

func TestAnalysisRun_InvalidThreshold(t *testing.T) {
	svc := NewAnalysisService(nil)

	_, err := svc.Run(context.Background(), strings.NewReader(sampleCSV()), Options{
		Threshold:   1.5,
		MinKeywords: 10,
	})
	require.Error(t, err)
}

func TestJobManager(t *testing.T) {
	manager := NewJobManager(NewAnalysisService(nil))

	job := manager.Submit([]byte(sampleCSV()), Options{Threshold: 0.8, MinKeywords: 10})
	require.NotEmpty(t, job.ID)

	deadline := time.After(5 * time.Second)
	for {
		snap, ok := manager.Get(job.ID)
		require.True(t, ok)
		if snap.Status.Terminal() {
			require.Equal(t, JobStatusCompleted, snap.Status)
			require.NotNil(t, snap.Result)
			assert.Len(t, snap.Result.Groups, 1)
			assert.NotNil(t, snap.CompletedAt)
			break
		}
		select {
		case <-deadline:
			t.Fatal("job did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	jobs := manager.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func TestJobManager_FailedJob(t *testing.T) {
	manager := NewJobManager(NewAnalysisService(nil))

	job := manager.Submit([]byte("bad,header\n1,2\n"), Options{Threshold: 0.8, MinKeywords: 10})

	deadline := time.After(5 * time.Second)
	for {
		snap, ok := manager.Get(job.ID)
		require.True(t, ok)
		if snap.Status.Terminal() {
			require.Equal(t, JobStatusFailed, snap.Status)
			assert.Contains(t, snap.Error, "missing required columns")
			break
		}
		select {
		case <-deadline:
			t.Fatal("job did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestJobManager_GetUnknown(t *testing.T) {
	manager := NewJobManager(NewAnalysisService(nil))

	_, ok := manager.Get("nope")
	assert.False(t, ok)
}
