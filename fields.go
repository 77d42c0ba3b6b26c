package wikidump

import (
	"regexp"
	"strings"
)

// Each extractor returns ok == false when the field is absent, in which
// case the caller leaves the field unset.

var dateRE, authorRE, descriptionRE, licenseHeaderRE, templateRE *regexp.Regexp

func init() {
	dateRE = regexp.MustCompile(`Date=\s*(.+)`)
	authorRE = regexp.MustCompile(`Author=\s*(.+)`)
	descriptionRE = regexp.MustCompile(`(?ims)description\s*=\s*(.+)`)
	licenseHeaderRE = regexp.MustCompile(`{{int:license-header}}\s*=+`)
	templateRE = regexp.MustCompile(`{{.+}}`)
}

func findField(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FindDate finds the value of the first "Date=" template parameter, up
// to the end of its line.
func FindDate(text string) (string, bool) {
	return findField(dateRE, text)
}

// FindAuthor finds the value of the first "Author=" template
// parameter, up to the end of its line.
func FindAuthor(text string) (string, bool) {
	return findField(authorRE, text)
}

// FindDescription finds the description parameter of the file page,
// stopping at the next template parameter.
func FindDescription(text string) (string, bool) {
	m := descriptionRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	desc := m[1]
	if i := strings.Index(desc, "\n|"); i >= 0 {
		desc = desc[:i]
	}
	return desc, true
}

// FindLicense finds the first template following the license header
// of the file page.
func FindLicense(text string) (string, bool) {
	loc := licenseHeaderRE.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	license := templateRE.FindString(text[loc[1]:])
	if license == "" {
		return "", false
	}
	return license, true
}
