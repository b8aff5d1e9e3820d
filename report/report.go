// Package report summarizes synchronization runs and publishes them for
// downstream consumers. Publishing is optional; the default publisher
// discards reports.
package report

import (
	"time"
)

// Outcome classifies what happened to one service during a run.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeDryRun    Outcome = "dry-run"
	OutcomeNotPushed Outcome = "not-pushed"
)

// ServiceResult is the per-service entry of a run report.
type ServiceResult struct {
	Name             string   `json:"name"`
	BlueCloudID      string   `json:"bluecloud_id,omitempty"`
	EOSCID           string   `json:"eosc_id,omitempty"`
	Outcome          Outcome  `json:"outcome"`
	Reason           string   `json:"reason,omitempty"`
	Diagnostics      []string `json:"diagnostics,omitempty"`
	MissingMandatory []string `json:"missing_mandatory,omitempty"`
}

// Report is the summary of one synchronization run over one VRE.
type Report struct {
	RunID    string          `json:"run_id"`
	VRE      string          `json:"vre"`
	DryRun   bool            `json:"dry_run"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Services []ServiceResult `json:"services"`

	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Add appends one service result and updates the counters.
func (r *Report) Add(res ServiceResult) {
	r.Services = append(r.Services, res)
	switch res.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped, OutcomeNotPushed:
		r.Skipped++
	}
}

// Publisher delivers finished run reports.
type Publisher interface {
	Publish(r *Report) error
}

// NopPublisher discards reports.
type NopPublisher struct{}

func (NopPublisher) Publish(*Report) error { return nil }
