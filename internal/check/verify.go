package check

import (
	"sort"

	"snapcheck/internal/model"
)

// VerifyOptions tunes one verify invocation.
type VerifyOptions struct {
	// IgnoreMissing allows the scanned directory to be a subset of the
	// archive: reference entries absent from the scan are not reported.
	IgnoreMissing bool

	// OnlyPresence switches to content-only matching: a scanned file is
	// found iff its digest appears anywhere in the reference, regardless
	// of identity. Path reorganization is then invisible.
	OnlyPresence bool

	// Workers bounds the hash pool. <= 0 means one per CPU.
	Workers int
}

// Verify checks whether the contents of an externally scanned directory are
// all represented in the reference snapshot. Every scanned file is hashed in
// full; no reuse heuristic applies because the external directory has no
// prior records.
func Verify(reference *model.Snapshot, entries []model.ScanEntry, clock Clock, opts VerifyOptions) *model.VerifyResult {
	result := &model.VerifyResult{}

	var index model.ContentIndex
	if opts.OnlyPresence {
		index = model.BuildContentIndex(reference)
	}

	scannedIdentities := make(map[string]struct{}, len(entries))
	scannedDigests := make(map[model.Digest]struct{}, len(entries))

	for _, res := range hashAll(entries, opts.Workers, clock.Now) {
		if res.err != nil {
			result.Errors = append(result.Errors, model.FileError{Identity: res.entry.Identity, Err: res.err})
			continue
		}

		result.FilesRead++
		result.BytesRead += res.record.Size

		scannedIdentities[res.record.Identity] = struct{}{}
		scannedDigests[res.record.Digest] = struct{}{}

		if opts.OnlyPresence {
			if !index.Contains(res.record.Digest) {
				result.Unmatched = append(result.Unmatched, res.record.Identity)
			}
			continue
		}

		ref, ok := reference.Records[res.record.Identity]
		switch {
		case !ok:
			result.Unmatched = append(result.Unmatched, res.record.Identity)
		case ref.Digest != res.record.Digest:
			result.Mismatched = append(result.Mismatched, res.record.Identity)
		}
	}

	if !opts.IgnoreMissing {
		for identity, rec := range reference.Records {
			if opts.OnlyPresence {
				if _, ok := scannedDigests[rec.Digest]; !ok {
					result.MissingFromReference = append(result.MissingFromReference, identity)
				}
				continue
			}
			if _, ok := scannedIdentities[identity]; !ok {
				result.MissingFromReference = append(result.MissingFromReference, identity)
			}
		}
	}

	sort.Strings(result.Unmatched)
	sort.Strings(result.Mismatched)
	sort.Strings(result.MissingFromReference)
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Identity < result.Errors[j].Identity
	})

	result.OK = len(result.Unmatched) == 0 &&
		len(result.Mismatched) == 0 &&
		len(result.Errors) == 0 &&
		len(result.MissingFromReference) == 0

	return result
}
