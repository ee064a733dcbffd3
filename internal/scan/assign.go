package scan

import (
	"fmt"

	"github.com/mwantia/tierd/pkg/db/models"
)

// Candidate is a built disk waiting for tier assignment.
type Candidate struct {
	Disk           *models.Disk
	RootFileSystem bool
	Defaulted      []Field
}

// Assignment places a new disk into a tier.
type Assignment struct {
	Candidate Candidate
	Disk      *models.Disk
	Tier      *models.Tier
}

// Plan is the outcome of Assign. Skipped holds urls that were already known
// or appeared earlier in the same batch.
type Plan struct {
	Assignments []Assignment
	Skipped     []string
}

// SelectLevel routes root filesystems to the primary tier and every other
// volume to the secondary tier.
func SelectLevel(rootFileSystem bool) int {
	if rootFileSystem {
		return models.TierPrimary
	}
	return models.TierSecondary
}

// Assign deduplicates candidates against the known urls and assigns every
// new disk to exactly one tier, in enumeration order. tiers must contain the
// primary and secondary levels. The seen set is local to this call.
func Assign(candidates []Candidate, known []string, tiers map[int]*models.Tier) (Plan, error) {
	for _, level := range []int{models.TierPrimary, models.TierSecondary} {
		if tiers[level] == nil {
			return Plan{}, fmt.Errorf("tier level %d is missing", level)
		}
	}

	seen := make(map[string]struct{}, len(known)+len(candidates))
	for _, url := range known {
		seen[url] = struct{}{}
	}

	plan := Plan{}
	for _, candidate := range candidates {
		disk := candidate.Disk
		if _, ok := seen[disk.URL]; ok {
			plan.Skipped = append(plan.Skipped, disk.URL)
			continue
		}

		tier := tiers[SelectLevel(candidate.RootFileSystem)]
		if tier.HasDisk(disk) {
			plan.Skipped = append(plan.Skipped, disk.URL)
			continue
		}

		tierID := tier.ID
		disk.TierID = &tierID
		tier.AddUniqueDisk(disk)

		plan.Assignments = append(plan.Assignments, Assignment{Candidate: candidate, Disk: disk, Tier: tier})
		seen[disk.URL] = struct{}{}
	}

	return plan, nil
}
