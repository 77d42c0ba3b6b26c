package wikidump

import (
	"strings"
)

// DefaultExtensions are the file types kept from the dump.
var DefaultExtensions = []string{"png", "jpg", "jpeg", "tiff", "gif"}

// A Matcher attaches file pages to the entities sharing their
// categories.
type Matcher struct {
	entities   Entities
	extensions map[string]bool
	// category identifier -> entities with questions in that category
	members map[string][]string

	Stats Stats
}

// Stats counts what a Matcher has seen.
type Stats struct {
	Pages    int64
	Files    int64
	Matched  int64
	Attached int64
}

// CategoriesOfInterest gets the categories of all the entities that
// have at least one question.
func CategoriesOfInterest(es Entities) map[string]bool {
	rv := map[string]bool{}
	for _, e := range es {
		if e.NQuestions < 1 {
			continue
		}
		for c := range e.Categories {
			rv[c] = true
		}
	}
	return rv
}

// NewMatcher builds a matcher over es.  If extensions is empty,
// DefaultExtensions are accepted.
func NewMatcher(es Entities, extensions []string) *Matcher {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	m := &Matcher{
		entities:   es,
		extensions: map[string]bool{},
		members:    map[string][]string{},
	}
	for _, ext := range extensions {
		m.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	for _, k := range es.Keys() {
		e := es[k]
		if e.NQuestions < 1 {
			continue
		}
		for c := range e.Categories {
			m.members[c] = append(m.members[c], k)
		}
	}
	return m
}

// Interesting reports whether any entity with questions is in the
// category.
func (m *Matcher) Interesting(category string) bool {
	return len(m.members[category]) > 0
}

// Accepts reports whether the title names a file of an accepted type.
func (m *Matcher) Accepts(title string) bool {
	return strings.HasPrefix(title, FilePrefix) && m.extensions[Extension(title)]
}

// ProcessPage attaches the page's image to every matching entity and
// returns how many entities got it.
func (m *Matcher) ProcessPage(p *Page) int {
	m.Stats.Pages++
	if p.Title == "" || !m.Accepts(p.Title) {
		return 0
	}
	rev := p.Revision()
	if rev == nil || rev.Text == "" {
		return 0
	}
	m.Stats.Files++

	categories := FindCategories(rev.Text)
	var keys []string
	seen := map[string]bool{}
	for _, c := range categories {
		for _, k := range m.members[c] {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	// Nothing else is extracted from pages nobody is interested in.
	if len(keys) == 0 {
		return 0
	}
	m.Stats.Matched++

	img := NewImage(rev, categories)
	for _, k := range keys {
		m.entities[k].AddImage(p.Title, img)
	}
	m.Stats.Attached += int64(len(keys))
	return len(keys)
}
