// Package syncer orchestrates full synchronization runs: reading services
// from the Blue-Cloud catalogue, mapping them to portal profiles and
// pushing the result. A run never aborts on a single bad record; every
// record gets an outcome and the run report collects them all.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bluecloud-project/eoscsync/enrich"
	"github.com/bluecloud-project/eoscsync/idstore"
	"github.com/bluecloud-project/eoscsync/mapping"
	"github.com/bluecloud-project/eoscsync/report"
)

// SourceClient reads one VRE's slice of the Blue-Cloud catalogue.
type SourceClient interface {
	ListServices(ctx context.Context) ([]string, error)
	GetService(ctx context.Context, name string) (*mapping.SourceRecord, error)
}

// SourceFactory builds a VRE-scoped source client, typically by acquiring
// a UMA token for that VRE first.
type SourceFactory func(ctx context.Context, vre string) (SourceClient, error)

// TargetClient writes resource profiles to the portal.
type TargetClient interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByName(ctx context.Context, name, organisation string) (string, bool, error)
	Create(ctx context.Context, rec *mapping.TargetRecord) (string, error)
	Update(ctx context.Context, rec *mapping.TargetRecord) error
	ValidateRemote(ctx context.Context, rec *mapping.TargetRecord) ([]string, error)
}

// Describer derives description text from a webpage.
type Describer interface {
	Describe(ctx context.Context, webpage string) (*enrich.Description, error)
}

// Runner executes synchronization runs. All fields except Enricher and
// Publisher are required.
type Runner struct {
	Source    SourceFactory
	Target    TargetClient
	Mapper    *mapping.Mapper
	IDs       *idstore.Store
	Enricher  Describer        // nil disables webpage enrichment
	Publisher report.Publisher // nil discards run reports

	MinTRL           int
	DryRun           bool
	RemoteValidation bool
	SnapshotDir      string

	Logger  *slog.Logger
	Metrics *Metrics
}

// SyncVRE synchronizes every service of one VRE and returns the run
// report. An error is returned only when the run as a whole cannot proceed
// (no token, unreachable catalogue); per-service problems are recorded in
// the report instead.
func (r *Runner) SyncVRE(ctx context.Context, vre string) (*report.Report, error) {
	started := time.Now()
	rep := &report.Report{
		RunID:   uuid.NewString(),
		VRE:     vre,
		DryRun:  r.DryRun,
		Started: started,
	}

	logger := r.Logger.With("vre", vre, "run_id", rep.RunID)
	logger.Info("starting synchronization", "dry_run", r.DryRun)

	source, err := r.Source(ctx, vre)
	if err != nil {
		return nil, fmt.Errorf("preparing source client for %q: %w", vre, err)
	}

	names, err := source.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing services of %q: %w", vre, err)
	}
	logger.Info("services listed", "count", len(names))

	for _, name := range names {
		rep.Add(r.syncService(ctx, logger, source, vre, name))
	}

	rep.Finished = time.Now()
	if r.Metrics != nil {
		r.Metrics.RunDuration.WithLabelValues(vre).Observe(time.Since(started).Seconds())
	}

	logger.Info("synchronization finished",
		"created", rep.Created, "updated", rep.Updated,
		"skipped", rep.Skipped, "failed", rep.Failed)

	if r.Publisher != nil {
		if err := r.Publisher.Publish(rep); err != nil {
			logger.Warn("publishing run report failed", "error", err)
		}
	}
	return rep, nil
}

func (r *Runner) syncService(ctx context.Context, logger *slog.Logger, source SourceClient, vre, name string) report.ServiceResult {
	result := report.ServiceResult{Name: name}
	logger = logger.With("service", name)

	defer func() {
		if r.Metrics != nil {
			r.Metrics.ServicesProcessed.WithLabelValues(vre, string(result.Outcome)).Inc()
		}
	}()

	rec, err := source.GetService(ctx, name)
	if err != nil {
		logger.Error("fetching service failed", "error", err)
		return failed(result, err)
	}
	result.BlueCloudID = rec.ID

	if err := writeSnapshot(r.SnapshotDir, vre, name, sourceSnapshotSuffix, rec); err != nil {
		logger.Error("snapshotting source record failed", "error", err)
		return failed(result, err)
	}

	res, err := r.Mapper.Map(*rec)
	if err != nil {
		var sentinel *mapping.SentinelDataError
		if errors.As(err, &sentinel) {
			logger.Warn("record carries placeholder data, skipping", "error", err)
			result.Outcome = report.OutcomeSkipped
			result.Reason = err.Error()
			return result
		}
		logger.Error("mapping failed", "error", err)
		return failed(result, err)
	}

	result.Diagnostics = res.Diagnostics
	result.MissingMandatory = res.MissingMandatory
	if len(res.Diagnostics) > 0 {
		logger.Warn("mapping produced diagnostics",
			"count", len(res.Diagnostics), "messages", strings.Join(res.Diagnostics, " | "))
		if r.Metrics != nil {
			r.Metrics.Diagnostics.WithLabelValues(vre).Add(float64(len(res.Diagnostics)))
		}
	}
	if len(res.MissingMandatory) > 0 {
		logger.Warn("mandatory fields missing", "fields", res.MissingMandatory)
	}

	r.enrichRecord(ctx, logger, res.Record)

	if err := writeSnapshot(r.SnapshotDir, vre, name, mappedSnapshotSuffix, res.Record); err != nil {
		logger.Error("snapshotting mapped record failed", "error", err)
		return failed(result, err)
	}

	if r.RemoteValidation {
		complaints, err := r.Target.ValidateRemote(ctx, res.Record)
		if err != nil {
			logger.Warn("remote validation unavailable", "error", err)
		} else if len(complaints) > 0 {
			logger.Warn("remote validation complained", "complaints", complaints)
			result.Diagnostics = append(result.Diagnostics, complaints...)
		}
	}

	if below, trl := trlBelow(res.Record.TRL, r.MinTRL); below {
		logger.Info("readiness level below minimum, not pushing", "trl", trl, "min", r.MinTRL)
		result.Outcome = report.OutcomeNotPushed
		result.Reason = fmt.Sprintf("trl %d below minimum %d", trl, r.MinTRL)
		return result
	}

	if r.DryRun {
		logger.Info("dry run, not pushing")
		result.Outcome = report.OutcomeDryRun
		return result
	}

	outcome, eoscID, err := r.push(ctx, logger, name, res.Record)
	if err != nil {
		logger.Error("push failed", "error", err)
		if r.Metrics != nil {
			r.Metrics.PushErrors.WithLabelValues(vre).Inc()
		}
		return failed(result, err)
	}
	result.Outcome = outcome
	result.EOSCID = eoscID
	return result
}

// enrichRecord fills an empty description or tagline from the webpage.
// Enrichment failures only cost the fallback text, never the record.
func (r *Runner) enrichRecord(ctx context.Context, logger *slog.Logger, rec *mapping.TargetRecord) {
	if r.Enricher == nil || len(rec.Webpage) == 0 {
		return
	}
	if len(rec.Description) > 0 && len(rec.Tagline) > 0 {
		return
	}

	desc, err := r.Enricher.Describe(ctx, rec.Webpage)
	if err != nil {
		logger.Warn("webpage enrichment failed", "webpage", rec.Webpage, "error", err)
		return
	}
	if len(rec.Description) == 0 {
		rec.Description = desc.Description
		logger.Info("description derived from webpage")
	}
	if len(rec.Tagline) == 0 {
		rec.Tagline = desc.Tagline
		logger.Info("tagline derived from webpage")
	}
}

// push creates or updates the portal resource. Resolution order: the local
// id store, then the portal by id, then the portal by name and
// organisation. Newly created ids are appended to the store immediately.
func (r *Runner) push(ctx context.Context, logger *slog.Logger, name string, rec *mapping.TargetRecord) (report.Outcome, string, error) {
	if id, found, err := r.IDs.Lookup(rec.SourceID); err != nil {
		return report.OutcomeFailed, "", err
	} else if found {
		exists, err := r.Target.ExistsByID(ctx, id)
		if err != nil {
			return report.OutcomeFailed, "", err
		}
		if exists {
			rec.ID = id
			if err := r.Target.Update(ctx, rec); err != nil {
				return report.OutcomeFailed, "", err
			}
			return report.OutcomeUpdated, id, nil
		}
		logger.Warn("stored portal id no longer exists, re-creating", "id", id)
	}

	if id, found, err := r.Target.ExistsByName(ctx, rec.Name, rec.ResourceOrganisation); err != nil {
		return report.OutcomeFailed, "", err
	} else if found {
		rec.ID = id
		if err := r.Target.Update(ctx, rec); err != nil {
			return report.OutcomeFailed, "", err
		}
		if err := r.IDs.Append(name, rec.SourceID, id, rec.Name); err != nil {
			return report.OutcomeFailed, "", err
		}
		return report.OutcomeUpdated, id, nil
	}

	id, err := r.Target.Create(ctx, rec)
	if err != nil {
		return report.OutcomeFailed, "", err
	}
	if err := r.IDs.Append(name, rec.SourceID, id, rec.Name); err != nil {
		return report.OutcomeFailed, "", err
	}
	return report.OutcomeCreated, id, nil
}

// trlBelow parses ids of the form "trl-7" and reports whether the level is
// below the minimum. Records without a readiness level pass the gate; the
// missing level already shows up in the diagnostics.
func trlBelow(trlID string, minTRL int) (bool, int) {
	if len(trlID) == 0 {
		return false, 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(trlID, "trl-"))
	if err != nil {
		return false, 0
	}
	return level < minTRL, level
}

func failed(result report.ServiceResult, err error) report.ServiceResult {
	result.Outcome = report.OutcomeFailed
	result.Reason = err.Error()
	return result
}
