package wikidump

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CategoryMarker prefixes every category identifier.
const CategoryMarker = "C"

const categoryPrefix = "category:"

var linkRE, nowikiRE, commentRE *regexp.Regexp

func init() {
	linkRE = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)
	nowikiRE = regexp.MustCompile(`(?ms)<nowiki>.*?</nowiki>`)
	commentRE = regexp.MustCompile(`(?ms)<!--.*?-->`)
}

func cleanText(text string) string {
	return nowikiRE.ReplaceAllString(commentRE.ReplaceAllString(text, ""), "")
}

// CategoryID converts the target of an internal link to a category
// identifier.  The second return value is false if the link is not a
// category link.
//
// [[Category:Foo]] and [[Category:Foo|Bar]] both give "CFoo".
func CategoryID(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if len(link) < len(categoryPrefix) ||
		!strings.EqualFold(link[:len(categoryPrefix)], categoryPrefix) {
		return "", false
	}
	name := link[len(categoryPrefix):]
	if i := strings.IndexByte(name, '|'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return CategoryMarker + norm.NFC.String(name), true
}

// FindCategories finds all the category identifiers of a page body,
// sorted and without duplicates.
func FindCategories(text string) []string {
	seen := map[string]bool{}
	for _, m := range linkRE.FindAllStringSubmatch(cleanText(text), -1) {
		if id, ok := CategoryID(m[1]); ok {
			seen[id] = true
		}
	}

	rv := make([]string, 0, len(seen))
	for id := range seen {
		rv = append(rv, id)
	}
	sort.Strings(rv)
	return rv
}
