// Package blocks maps narration media ids to the 4-digit narration block they
// belong to, and validates block assignments against that mapping.
//
// Narration blocks are numbered in page order starting at 1; media ids are
// numbered in creation order starting at 0. The expected block of {audio|caption}-n
// is therefore always n+1. Every other helper here composes that formula.
package blocks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rcliao/course-media/internal/model"
)

// MaxBlock is the largest representable block number.
const MaxBlock = 9999

// MediaID is a parsed media identifier.
type MediaID struct {
	Prefix string
	Index  int
}

// String formats the id as {prefix}-{index}.
func (m MediaID) String() string {
	return m.Prefix + "-" + strconv.Itoa(m.Index)
}

// IsNarration reports whether the id takes part in block numbering.
func (m MediaID) IsNarration() bool {
	return m.Prefix == string(model.MediaAudio) || m.Prefix == string(model.MediaCaption)
}

// ParseMediaID splits an id of the form {prefix}-{n}. The index must be a
// plain non-negative decimal integer.
func ParseMediaID(id string) (MediaID, bool) {
	dash := strings.LastIndexByte(id, '-')
	if dash <= 0 || dash == len(id)-1 {
		return MediaID{}, false
	}
	digits := id[dash+1:]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return MediaID{}, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return MediaID{}, false
	}
	return MediaID{Prefix: id[:dash], Index: n}, true
}

// FormatBlock zero-pads n to four digits.
func FormatBlock(n int) string {
	return fmt.Sprintf("%04d", n)
}

// ParseBlock parses a 4-digit block string.
func ParseBlock(block string) (int, error) {
	if len(block) != 4 {
		return 0, fmt.Errorf("invalid block %q: want 4 digits", block)
	}
	for i := 0; i < len(block); i++ {
		if block[i] < '0' || block[i] > '9' {
			return 0, fmt.Errorf("invalid block %q", block)
		}
	}
	n, err := strconv.Atoi(block)
	if err != nil {
		return 0, fmt.Errorf("invalid block %q", block)
	}
	return n, nil
}

// BlockOf returns the narration block a media id is expected to occupy.
// It returns false for non-narration media (images, video) and malformed ids.
func BlockOf(mediaID string) (string, bool) {
	id, ok := ParseMediaID(mediaID)
	if !ok || !id.IsNarration() || id.Index >= MaxBlock {
		return "", false
	}
	return FormatBlock(id.Index + 1), true
}

// NarrationIndexForBlock is the inverse of BlockOf: the id index that belongs in block.
func NarrationIndexForBlock(block int) int {
	return block - 1
}

// PageBlock returns the block number of a page slot: welcome is 1,
// objectives is 2 and the topic at index i is i+3.
func PageBlock(slot model.Slot, topicIndex int) int {
	switch slot {
	case model.SlotWelcome:
		return 1
	case model.SlotObjectives:
		return 2
	default:
		return topicIndex + 3
	}
}

// ExpectedNarrationID returns the narration id with the given prefix that
// belongs on the page: {prefix}-{block-1}.
func ExpectedNarrationID(prefix string, slot model.Slot, topicIndex int) string {
	return MediaID{Prefix: prefix, Index: NarrationIndexForBlock(PageBlock(slot, topicIndex))}.String()
}

// ExpectedPageID returns the page a narration id belongs to: index 0 is the
// welcome page, 1 the objectives page and n >= 2 is topic n-2. Ids past the
// last block have no page.
func ExpectedPageID(mediaID string) (string, bool) {
	id, ok := ParseMediaID(mediaID)
	if !ok || !id.IsNarration() || id.Index >= MaxBlock {
		return "", false
	}
	switch block := id.Index + 1; block {
	case PageBlock(model.SlotWelcome, -1):
		return model.WelcomePageID, true
	case PageBlock(model.SlotObjectives, -1):
		return model.ObjectivesPageID, true
	default:
		return model.TopicPageID(block - 3), true
	}
}
