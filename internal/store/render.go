package store

import (
	"bytes"
	"sort"

	"snapcheck/internal/model"
)

// Artifact is one named, serialized piece of snapshot state, ready to be
// pushed to a mirror. The serialization is the text state-file format
// regardless of which store backend holds the authoritative copy.
type Artifact struct {
	Name string
	Data []byte
}

// RenderArtifacts serializes a snapshot and its report into mirror
// artifacts: always the state file, plus one artifact per non-empty
// New/Missing/Modified category.
func RenderArtifacts(snap *model.Snapshot, report *model.DiffReport) []Artifact {
	stamp := Stamp(snap.CreatedAt)

	records := make([]model.FileRecord, 0, len(snap.Records))
	for _, rec := range snap.Records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Identity < records[j].Identity })

	artifacts := []Artifact{{Name: stamp + stateSuffix, Data: renderRecords(records)}}

	if len(report.New) > 0 {
		artifacts = append(artifacts, Artifact{Name: stamp + newSuffix, Data: renderRecords(report.New)})
	}
	if len(report.Missing) > 0 {
		artifacts = append(artifacts, Artifact{Name: stamp + missingSuffix, Data: renderRecords(report.Missing)})
	}
	if len(report.Modified) > 0 {
		previous := make([]model.FileRecord, 0, len(report.Modified))
		for _, pair := range report.Modified {
			previous = append(previous, pair.Previous)
		}
		artifacts = append(artifacts, Artifact{Name: stamp + modifiedSuffix, Data: renderRecords(previous)})
	}
	return artifacts
}

// renderRecords serializes records in the state-file line format.
func renderRecords(records []model.FileRecord) []byte {
	var buf bytes.Buffer
	for _, rec := range records {
		buf.WriteString(formatRecord(rec))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
