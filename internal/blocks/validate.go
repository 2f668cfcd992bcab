package blocks

import "github.com/rcliao/course-media/internal/model"

// Assignment pairs a media id with the block it was actually assigned to.
type Assignment struct {
	ID            string `json:"id"`
	AssignedBlock string `json:"assignedBlock"`
}

// Mismatch is an assignment whose block differs from the expected one.
type Mismatch struct {
	MediaID       string `json:"mediaId"`
	AssignedBlock string `json:"assignedBlock"`
	ExpectedBlock string `json:"expectedBlock"`
}

// Validate reports every narration assignment whose block differs from BlockOf.
// Non-narration ids are skipped. Output order follows input order.
func Validate(items []Assignment) []Mismatch {
	var out []Mismatch
	for _, it := range items {
		expected, ok := BlockOf(it.ID)
		if !ok {
			continue
		}
		if it.AssignedBlock != expected {
			out = append(out, Mismatch{
				MediaID:       it.ID,
				AssignedBlock: it.AssignedBlock,
				ExpectedBlock: expected,
			})
		}
	}
	return out
}

// AssignmentsFromTree lists every narration reference in the tree with the
// block of the page holding it, in traversal order.
func AssignmentsFromTree(tree *model.ContentTree) []Assignment {
	var out []Assignment
	for _, p := range tree.Pages() {
		block := FormatBlock(PageBlock(p.Slot, p.Index))
		for _, m := range p.Page.Media {
			if !m.Type.IsNarration() {
				continue
			}
			out = append(out, Assignment{ID: m.ID, AssignedBlock: block})
		}
	}
	return out
}
