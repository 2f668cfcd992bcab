// Package drift classifies block mismatches and repairs systematic media
// misalignment in a content tree.
package drift

import (
	"github.com/rcliao/course-media/internal/blocks"
	"github.com/rcliao/course-media/internal/model"
)

// Status values reported by Analyze.
const (
	StatusAligned       = "aligned"
	StatusSystematic    = "systematic"
	StatusNonSystematic = "non_systematic"
)

// Report summarizes a set of mismatches.
type Report struct {
	Status     string            `json:"status"`
	Systematic bool              `json:"systematic"`
	Offset     int               `json:"offset,omitempty"`
	Mismatches []blocks.Mismatch `json:"mismatches"`
}

// offsetOf returns assigned-expected for a mismatch.
func offsetOf(m blocks.Mismatch) (int, bool) {
	assigned, err := blocks.ParseBlock(m.AssignedBlock)
	if err != nil {
		return 0, false
	}
	expected, err := blocks.ParseBlock(m.ExpectedBlock)
	if err != nil {
		return 0, false
	}
	return assigned - expected, true
}

// uniformOffset returns the shared signed offset of all mismatches.
func uniformOffset(mismatches []blocks.Mismatch) (int, bool) {
	if len(mismatches) < 2 {
		return 0, false
	}
	first, ok := offsetOf(mismatches[0])
	if !ok || first == 0 {
		return 0, false
	}
	for _, m := range mismatches[1:] {
		off, ok := offsetOf(m)
		if !ok || off != first {
			return 0, false
		}
	}
	return first, true
}

// DetectSystematicDrift reports whether the mismatches share one non-zero
// signed offset. A single mismatch is never systematic.
func DetectSystematicDrift(mismatches []blocks.Mismatch) bool {
	_, ok := uniformOffset(mismatches)
	return ok
}

// Analyze classifies mismatches. Non-systematic drift is reported but must
// not be repaired automatically.
func Analyze(mismatches []blocks.Mismatch) Report {
	r := Report{Mismatches: mismatches}
	if r.Mismatches == nil {
		r.Mismatches = []blocks.Mismatch{}
	}
	if len(mismatches) == 0 {
		r.Status = StatusAligned
		return r
	}
	if off, ok := uniformOffset(mismatches); ok {
		r.Status = StatusSystematic
		r.Systematic = true
		r.Offset = off
		return r
	}
	r.Status = StatusNonSystematic
	return r
}

// RepairMediaAlignment remaps misaligned narration references in every topic
// to the id that belongs in that topic's block, when an asset with that id
// exists in assets. It returns a repaired copy of tree and the number of
// references changed; tree itself is never modified.
//
// The remap is per slot: a reference already correct for its topic is never
// touched, even when another topic holds a stale copy of the same id. Slots
// whose replacement id has no asset are left as they are.
func RepairMediaAlignment(tree model.ContentTree, assets map[string]model.AssetRecord) (model.ContentTree, int) {
	out := tree.Clone()
	repaired := 0
	for i := range out.Topics {
		media := out.Topics[i].Media
		for j := range media {
			ref := &media[j]
			id, ok := blocks.ParseMediaID(ref.ID)
			if !ok || !id.IsNarration() {
				continue
			}
			want := blocks.ExpectedNarrationID(id.Prefix, model.SlotTopic, i)
			if ref.ID == want {
				continue
			}
			if _, exists := assets[want]; !exists {
				continue
			}
			ref.ID = want
			repaired++
		}
	}
	return out, repaired
}
