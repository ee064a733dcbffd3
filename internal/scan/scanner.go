package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/mwantia/tierd/internal/classify"
	config "github.com/mwantia/tierd/internal/config/server"
	"github.com/mwantia/tierd/internal/metrics"
	"github.com/mwantia/tierd/internal/volume"
	"github.com/mwantia/tierd/pkg/capacity"
	"github.com/mwantia/tierd/pkg/db/models"
	"github.com/mwantia/tierd/pkg/db/store"
	"github.com/mwantia/tierd/pkg/log"
)

// Scanner runs the enumerate, classify, build, assign and persist pipeline.
// It assumes a single writer; the unique url constraint of the store is the
// only guard against concurrent scans.
type Scanner struct {
	source volume.Source
	store  store.MetadataStore
	filter *volume.Filter
	tiers  config.TiersServerConfig
	log    log.LoggerService
}

func NewScanner(source volume.Source, st store.MetadataStore, filter *volume.Filter, tiers config.TiersServerConfig, logger log.LoggerService) *Scanner {
	return &Scanner{
		source: source,
		store:  st,
		filter: filter,
		tiers:  tiers,
		log:    logger,
	}
}

// Scan enumerates volumes and persists every new one into its tier. An
// EnumerationError aborts before any write; failures of single volumes are
// logged, collected in the report and never returned.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now()}

	entries, err := s.source.Enumerate(ctx)
	if err != nil {
		metrics.RecordScan(metrics.ScanFailed, time.Since(report.StartedAt))
		return nil, &EnumerationError{Err: err}
	}
	report.Enumerated = len(entries)

	candidates := s.prepare(entries, report)

	if err := ctx.Err(); err != nil {
		metrics.RecordScan(metrics.ScanFailed, time.Since(report.StartedAt))
		return nil, fmt.Errorf("scan cancelled before persistence: %w", err)
	}

	err = s.store.Transaction(ctx, func(tx store.MetadataStore) error {
		return s.persist(ctx, tx, candidates, report)
	})
	report.FinishedAt = time.Now()

	if err != nil {
		metrics.RecordScan(metrics.ScanFailed, report.Duration())
		return nil, fmt.Errorf("failed to persist scan: %w", err)
	}

	metrics.RecordScan(metrics.ScanSucceeded, report.Duration())
	metrics.RecordVolumes(metrics.VolumeAdded, len(report.Added))
	metrics.RecordVolumes(metrics.VolumeSkipped, len(report.Skipped))
	metrics.RecordVolumes(metrics.VolumeExcluded, len(report.Excluded))
	metrics.RecordVolumes(metrics.VolumeFailed, len(report.Failures))

	if err := s.publishTiers(ctx); err != nil {
		s.log.Warn("Failed to publish tier metrics: %v", err)
	}

	s.log.Info("Scan finished in %s: %d enumerated, %d added, %d skipped, %d excluded, %d failed",
		report.Duration(), report.Enumerated, len(report.Added), len(report.Skipped), len(report.Excluded), len(report.Failures))

	return report, nil
}

// prepare filters, classifies and builds candidates in enumeration order.
func (s *Scanner) prepare(entries []volume.Entry, report *Report) []Candidate {
	candidates := make([]Candidate, 0, len(entries))

	for _, entry := range entries {
		if entry.Err != nil || entry.Descriptor == nil {
			err := entry.Err
			if err == nil {
				err = ErrNoDescriptor
			}
			failure := &ResourceValueError{MountPoint: entry.MountPoint, Err: err}
			s.log.Warn("Skipping volume: %v", failure)
			report.Failures = append(report.Failures, failure)
			continue
		}

		descriptor := entry.Descriptor
		if reason := s.filter.Check(descriptor); reason != volume.NotExcluded {
			s.log.Debug("Excluding volume '%s': %s", entry.MountPoint, reason)
			report.Excluded = append(report.Excluded, ExcludedVolume{Path: entry.MountPoint, Reason: reason})
			continue
		}

		storageType := classify.Classify(descriptor)
		if classify.Fallback(descriptor, storageType) {
			s.log.Debug("Volume '%s' classified as %s by fallback", entry.MountPoint, storageType)
		}

		usage := capacity.Compute(descriptor.AvailableCapacity, descriptor.TotalCapacity)
		record, err := Build(descriptor, storageType, usage)
		if err != nil {
			failure := &ResourceValueError{MountPoint: entry.MountPoint, Err: err}
			s.log.Warn("Skipping volume: %v", failure)
			report.Failures = append(report.Failures, failure)
			continue
		}
		if len(record.Defaulted) > 0 {
			s.log.Debug("Volume '%s' defaulted fields %v", entry.MountPoint, record.Defaulted)
		}

		disk := record.Disk
		candidates = append(candidates, Candidate{
			Disk:           &disk,
			RootFileSystem: record.RootFileSystem,
			Defaulted:      record.Defaulted,
		})
	}

	return candidates
}

// persist runs inside one transaction. Every disk insert gets its own
// savepoint so a rejected disk does not undo the others.
func (s *Scanner) persist(ctx context.Context, tx store.MetadataStore, candidates []Candidate, report *Report) error {
	tiers, err := s.ensureTiers(ctx, tx)
	if err != nil {
		return err
	}

	known, err := tx.ListDiskURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list known disks: %w", err)
	}

	plan, err := Assign(candidates, known, tiers)
	if err != nil {
		return err
	}

	for _, url := range plan.Skipped {
		s.log.Debug("Disk '%s' is already known", url)
	}
	report.Skipped = append(report.Skipped, plan.Skipped...)

	for _, assignment := range plan.Assignments {
		disk := assignment.Disk

		err := tx.Transaction(ctx, func(inner store.MetadataStore) error {
			return inner.CreateDisk(ctx, disk)
		})
		if err != nil {
			failure := &PersistenceError{URL: disk.URL, Err: err}
			s.log.Error("%v", failure)
			report.Failures = append(report.Failures, failure)
			continue
		}

		s.log.Info("Added disk '%s' (%s, %s) to tier %d",
			disk.URL, disk.Type, capacity.FormatPercentage(disk.UsedCapacity, disk.TotalCapacity), assignment.Tier.Level)

		report.Added = append(report.Added, AddedDisk{
			ID:        disk.ID,
			URL:       disk.URL,
			Name:      disk.Name,
			Type:      disk.Type,
			Level:     assignment.Tier.Level,
			Defaulted: assignment.Candidate.Defaulted,
		})
	}

	return nil
}

// ensureTiers creates the canonical and configured tiers if absent.
func (s *Scanner) ensureTiers(ctx context.Context, tx store.MetadataStore) (map[int]*models.Tier, error) {
	levels := map[int]string{
		models.TierPrimary:   s.tiers.PrimaryName,
		models.TierSecondary: s.tiers.SecondaryName,
	}
	for _, extra := range s.tiers.Extra {
		levels[extra.Level] = extra.Name
	}

	tiers := make(map[int]*models.Tier, len(levels))
	for level, name := range levels {
		tier, err := tx.EnsureTier(ctx, level, name)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure tier %d: %w", level, err)
		}
		tiers[level] = tier
	}
	return tiers, nil
}

func (s *Scanner) publishTiers(ctx context.Context) error {
	tiers, err := s.store.ListTiers(ctx)
	if err != nil {
		return err
	}

	for _, tier := range tiers {
		var total, used int64
		for _, disk := range tier.Disks {
			total += disk.TotalCapacity
			used += disk.UsedCapacity
		}
		metrics.SetTier(tier.Level, len(tier.Disks), total, used)
	}
	return nil
}
