package check

import (
	"sort"

	"snapcheck/internal/model"
)

// DiffOptions tunes one diff invocation.
type DiffOptions struct {
	// ForceRehash disables the size+mtime reuse heuristic: every scanned
	// file is read and hashed even when its metadata is unchanged.
	ForceRehash bool

	// DetectRenames moves missing identities whose content survives
	// elsewhere in the new snapshot into the Renamed category, and
	// reclassifies a modified file as New when its previous content still
	// exists at another identity. Off by default so New/Unchanged/
	// Modified/Missing exactly partition the identity union.
	DetectRenames bool

	// Workers bounds the hash pool. <= 0 means one per CPU.
	Workers int
}

// Diff compares a fresh scan against the most recent snapshot and produces
// the successor snapshot plus a classification report.
//
// The reuse heuristic trusts an unchanged size+mtime pair and carries the
// previous digest forward without reading content. That is an optimization,
// not a correctness guarantee: content rewritten without a metadata change
// is reported Unchanged unless ForceRehash is set. Everything else is read
// in full; a file whose metadata drifted but whose digest matches is still
// Unchanged (re-verified), not Modified.
//
// A hash failure degrades that file to an entry in report.Errors and never
// aborts the batch. If the file had a previous record, that record is
// retained in the new snapshot unchanged, so a transient read error cannot
// erase archive history.
func Diff(previous *model.Snapshot, entries []model.ScanEntry, clock Clock, opts DiffOptions) (*model.Snapshot, *model.DiffReport) {
	snap := model.NewSnapshot(clock.Now())
	report := &model.DiffReport{}

	var prevRecords map[string]model.FileRecord
	if previous != nil {
		prevRecords = previous.Records
	}

	scanned := make(map[string]struct{}, len(entries))
	var toHash []model.ScanEntry

	for _, entry := range entries {
		scanned[entry.Identity] = struct{}{}

		prev, known := prevRecords[entry.Identity]
		if known && !opts.ForceRehash && prev.Size == entry.Size && prev.ModifiedAt.Equal(entry.ModifiedAt) {
			// Metadata unchanged: trust the recorded digest.
			rec := prev
			rec.LastSeen = clock.Now()
			snap.Records[rec.Identity] = rec
			report.Unchanged = append(report.Unchanged, rec)
			continue
		}

		toHash = append(toHash, entry)
	}

	for _, res := range hashAll(toHash, opts.Workers, clock.Now) {
		prev, known := prevRecords[res.entry.Identity]

		if res.err != nil {
			report.Errors = append(report.Errors, model.FileError{Identity: res.entry.Identity, Err: res.err})
			if known {
				snap.Records[prev.Identity] = prev
			}
			continue
		}

		report.FilesRead++
		report.BytesRead += res.record.Size

		snap.Records[res.record.Identity] = res.record
		switch {
		case !known:
			report.New = append(report.New, res.record)
		case prev.Digest == res.record.Digest:
			report.Unchanged = append(report.Unchanged, res.record)
		default:
			report.Modified = append(report.Modified, model.ModifiedPair{Previous: prev, Current: res.record})
		}
	}

	for identity, rec := range prevRecords {
		if _, ok := scanned[identity]; !ok {
			report.Missing = append(report.Missing, rec)
		}
	}

	if opts.DetectRenames {
		suppressRenames(snap, report)
	}

	sortReport(report)
	return snap, report
}

// suppressRenames reclassifies report entries whose content survives at a
// different identity in the new snapshot.
func suppressRenames(snap *model.Snapshot, report *model.DiffReport) {
	present := make(map[model.Digest]struct{}, len(snap.Records))
	for _, rec := range snap.Records {
		present[rec.Digest] = struct{}{}
	}

	missing := report.Missing[:0]
	for _, rec := range report.Missing {
		if _, ok := present[rec.Digest]; ok {
			report.Renamed = append(report.Renamed, rec)
		} else {
			missing = append(missing, rec)
		}
	}
	report.Missing = missing

	modified := report.Modified[:0]
	for _, pair := range report.Modified {
		if _, ok := present[pair.Previous.Digest]; ok {
			// The previous content still exists elsewhere; treat the
			// rewrite at this identity as a new file.
			report.New = append(report.New, pair.Current)
		} else {
			modified = append(modified, pair)
		}
	}
	report.Modified = modified
}

// sortReport orders every category by identity so output and side artifacts
// are deterministic regardless of hash completion order.
func sortReport(report *model.DiffReport) {
	byIdentity := func(recs []model.FileRecord) {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Identity < recs[j].Identity })
	}
	byIdentity(report.New)
	byIdentity(report.Unchanged)
	byIdentity(report.Missing)
	byIdentity(report.Renamed)
	sort.Slice(report.Modified, func(i, j int) bool {
		return report.Modified[i].Current.Identity < report.Modified[j].Current.Identity
	})
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].Identity < report.Errors[j].Identity
	})
}
