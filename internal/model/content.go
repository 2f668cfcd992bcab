package model

import "fmt"

// Page ids for the fixed slots of a course.
const (
	WelcomePageID    = "welcome"
	ObjectivesPageID = "objectives"
)

// TopicPageID returns the page id of the topic at index i.
func TopicPageID(i int) string {
	return fmt.Sprintf("topic-%d", i)
}

// Page is a course page or topic. Both own their media references.
type Page struct {
	ID        string           `json:"id"`
	Title     string           `json:"title,omitempty"`
	Content   string           `json:"content,omitempty"`
	Narration string           `json:"narration,omitempty"`
	Media     []MediaReference `json:"media,omitempty"`
}

// Question is a single assessment question.
type Question struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

// Assessment closes a course. It carries no media.
type Assessment struct {
	Narration string     `json:"narration,omitempty"`
	PassMark  int        `json:"passMark,omitempty"`
	Questions []Question `json:"questions,omitempty"`
}

// ContentTree is the root aggregate of a course.
type ContentTree struct {
	WelcomePage    Page       `json:"welcomePage"`
	ObjectivesPage Page       `json:"objectivesPage"`
	Topics         []Page     `json:"topics"`
	Assessment     Assessment `json:"assessment"`
}

// PageRef addresses one media-owning node of the tree.
type PageRef struct {
	Slot  Slot
	Index int // topic index; -1 for fixed slots
	Page  *Page
}

// Slot identifies which part of the tree a page occupies.
type Slot int

const (
	SlotWelcome Slot = iota
	SlotObjectives
	SlotTopic
)

// Pages returns every media-owning node in traversal order:
// welcome, objectives, then topics by index.
func (t *ContentTree) Pages() []PageRef {
	refs := make([]PageRef, 0, len(t.Topics)+2)
	refs = append(refs,
		PageRef{Slot: SlotWelcome, Index: -1, Page: &t.WelcomePage},
		PageRef{Slot: SlotObjectives, Index: -1, Page: &t.ObjectivesPage},
	)
	for i := range t.Topics {
		refs = append(refs, PageRef{Slot: SlotTopic, Index: i, Page: &t.Topics[i]})
	}
	return refs
}

// MediaCount returns the number of media references in the tree.
func (t *ContentTree) MediaCount() int {
	n := 0
	for _, p := range t.Pages() {
		n += len(p.Page.Media)
	}
	return n
}

func (p Page) clone() Page {
	if p.Media != nil {
		media := make([]MediaReference, len(p.Media))
		for i, m := range p.Media {
			media[i] = m.Clone()
		}
		p.Media = media
	}
	return p
}

// Clone returns a deep copy of the tree.
func (t ContentTree) Clone() ContentTree {
	out := t
	out.WelcomePage = t.WelcomePage.clone()
	out.ObjectivesPage = t.ObjectivesPage.clone()
	if t.Topics != nil {
		out.Topics = make([]Page, len(t.Topics))
		for i, topic := range t.Topics {
			out.Topics[i] = topic.clone()
		}
	}
	if t.Assessment.Questions != nil {
		qs := make([]Question, len(t.Assessment.Questions))
		for i, q := range t.Assessment.Questions {
			if q.Options != nil {
				q.Options = append([]string(nil), q.Options...)
			}
			qs[i] = q
		}
		out.Assessment.Questions = qs
	}
	return out
}
