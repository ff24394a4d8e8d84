package m_outbox

import (
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
)

func TestExpired(t *testing.T) {
	completedCutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	failedCutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	processed := func(at time.Time) spanner.NullTime { return spanner.NullTime{Time: at, Valid: true} }

	tests := []struct {
		name string
		data Data
		want bool
	}{
		{"completed before cutoff", Data{Status: StatusCompleted, ProcessedAt: processed(completedCutoff.Add(-time.Hour))}, true},
		{"completed after cutoff", Data{Status: StatusCompleted, ProcessedAt: processed(completedCutoff.Add(time.Hour))}, false},
		{"failed uses its own cutoff", Data{Status: StatusFailed, ProcessedAt: processed(completedCutoff.Add(-time.Hour))}, false},
		{"failed before cutoff", Data{Status: StatusFailed, ProcessedAt: processed(failedCutoff.Add(-time.Hour))}, true},
		{"pending never expires", Data{Status: StatusPending, ProcessedAt: processed(failedCutoff.Add(-time.Hour))}, false},
		{"unprocessed never expires", Data{Status: StatusCompleted}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(&tt.data, completedCutoff, failedCutoff))
		})
	}
}

func TestDeleteMut(t *testing.T) {
	assert.NotNil(t, NewModel().DeleteMut("evt-1"))
	assert.Len(t, NewModel().ReadColumns(), 9)
}
