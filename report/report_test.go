package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCounters(t *testing.T) {
	r := &Report{RunID: "run-1", VRE: "Blue-CloudLab", Started: time.Now()}

	r.Add(ServiceResult{Name: "a", Outcome: OutcomeCreated})
	r.Add(ServiceResult{Name: "b", Outcome: OutcomeUpdated})
	r.Add(ServiceResult{Name: "c", Outcome: OutcomeSkipped, Reason: "trl below minimum"})
	r.Add(ServiceResult{Name: "d", Outcome: OutcomeFailed, Reason: "vocabulary miss"})
	r.Add(ServiceResult{Name: "e", Outcome: OutcomeNotPushed})

	assert.Equal(t, 1, r.Created)
	assert.Equal(t, 1, r.Updated)
	assert.Equal(t, 2, r.Skipped)
	assert.Equal(t, 1, r.Failed)
	assert.Len(t, r.Services, 5)
}

func TestReportJSONShape(t *testing.T) {
	r := &Report{RunID: "run-1", VRE: "Blue-CloudLab"}
	r.Add(ServiceResult{Name: "oceanpatterns", Outcome: OutcomeCreated, EOSCID: "bc.oceanpatterns"})

	payload, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "Blue-CloudLab", decoded["vre"])
	assert.EqualValues(t, 1, decoded["created"])
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(&Report{RunID: "run-1"}))
}
