package shopfloor

import (
	"sort"
	"time"

	"shopcore/store"
)

// AssemblyEntry is one line in the assembly queue view: a work order
// assembly whose jobs have all cleared manufacturing, joined with
// enough parent context to act on it. MissingAssembly marks a
// synthetic entry for a work order with no assembly rows at all, so
// the caller can prompt for backfill instead of dropping the order.
type AssemblyEntry struct {
	WorkOrder       *store.WorkOrder         `json:"work_order"`
	Assembly        *store.WorkOrderAssembly `json:"assembly,omitempty"`
	Jobs            []*store.Job             `json:"jobs"`
	MissingAssembly bool                     `json:"missing_assembly,omitempty"`
}

// AssemblyBuckets is the classified assembly queue.
type AssemblyBuckets struct {
	InProgress        []*AssemblyEntry `json:"in_progress"`
	Queued            []*AssemblyEntry `json:"queued"`
	CompletedThisWeek []*AssemblyEntry `json:"completed_this_week"`
}

// IsAssemblyReady reports whether every job tied to the assembly has
// cleared manufacturing (ready_for_assembly, in_assembly or complete)
// and at least one still has assembly work left. An assembly with no
// jobs is never ready.
func IsAssemblyReady(jobs []*store.Job) bool {
	if len(jobs) == 0 {
		return false
	}
	hasAssemblyWork := false
	for _, j := range jobs {
		switch JobStatus(j.Status) {
		case JobReadyForAssembly, JobInAssembly:
			hasAssemblyWork = true
		case JobComplete:
		default:
			return false
		}
	}
	return hasAssemblyWork
}

// ClassifyAssemblies walks open work orders and buckets their
// assemblies by readiness and assembly status. partTypes maps
// assembly_part_id to the part's type so finished goods can be
// skipped; WeekStart bounds the completed bucket.
func ClassifyAssemblies(details []*store.WorkOrderDetail, partTypes map[int64]PartType, now time.Time) *AssemblyBuckets {
	buckets := &AssemblyBuckets{}
	weekStart := WeekStart(now)

	for _, d := range details {
		if len(d.Assemblies) == 0 {
			// Data gap: jobs exist but no assembly rows. Surface a
			// virtual queue entry instead of hiding the work order.
			if IsAssemblyReady(activeJobs(d.Jobs)) {
				buckets.Queued = append(buckets.Queued, &AssemblyEntry{
					WorkOrder:       d.WorkOrder,
					Jobs:            activeJobs(d.Jobs),
					MissingAssembly: true,
				})
			}
			continue
		}

		for _, woa := range d.Assemblies {
			if partTypes[woa.AssemblyPartID] == PartFinishedGood {
				continue
			}
			jobs := jobsForAssembly(d.Jobs, woa.ID)
			if !IsAssemblyReady(jobs) && WOAStatus(woa.Status) != WOAComplete {
				continue
			}
			entry := &AssemblyEntry{WorkOrder: d.WorkOrder, Assembly: woa, Jobs: jobs}

			switch WOAStatus(woa.Status) {
			case WOAInProgress:
				buckets.InProgress = append(buckets.InProgress, entry)
			case WOAComplete:
				if woa.AssemblyCompletedAt != nil && !woa.AssemblyCompletedAt.Before(weekStart) {
					buckets.CompletedThisWeek = append(buckets.CompletedThisWeek, entry)
				}
			default:
				buckets.Queued = append(buckets.Queued, entry)
			}
		}
	}

	sort.Slice(buckets.CompletedThisWeek, func(i, j int) bool {
		a := buckets.CompletedThisWeek[i].Assembly.AssemblyCompletedAt
		b := buckets.CompletedThisWeek[j].Assembly.AssemblyCompletedAt
		return a.After(*b)
	})
	return buckets
}

// WeekStart returns local Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func jobsForAssembly(jobs []*store.Job, woaID int64) []*store.Job {
	var out []*store.Job
	for _, j := range jobs {
		if j.WorkOrderAssemblyID != nil && *j.WorkOrderAssemblyID == woaID {
			if JobStatus(j.Status) != JobCancelled {
				out = append(out, j)
			}
		}
	}
	return out
}

func activeJobs(jobs []*store.Job) []*store.Job {
	var out []*store.Job
	for _, j := range jobs {
		if JobStatus(j.Status) != JobCancelled {
			out = append(out, j)
		}
	}
	return out
}
