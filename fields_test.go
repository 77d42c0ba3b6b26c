package wikidump

import (
	"testing"
)

func TestFindField(t *testing.T) {
	tests := []struct {
		text  string
		find  func(string) (string, bool)
		field string
		exp   string
		ok    bool
	}{
		{"|Date=2020\n", FindDate, "Date", "2020", true},
		{"|Date=2020", FindDate, "Date", "2020", true},
		{"|Date= 1890-05\n|Author=Vincent\n", FindAuthor, "Author", "Vincent", true},
		{"|Date=first\n|Date=second\n", FindDate, "Date", "first", true},
		{"|date=lowercase\n", FindDate, "Date", "", false},
		{"|Author=\n[[User:X]]\n", FindAuthor, "Author", "[[User:X]]", true},
		{"nothing", FindDate, "Date", "", false},
	}
	for _, test := range tests {
		got, ok := test.find(test.text)
		if got != test.exp || ok != test.ok {
			t.Errorf("Expected (%q, %v) for %s in %q, got (%q, %v)",
				test.exp, test.ok, test.field, test.text, got, ok)
		}
	}
}

func TestFindDescription(t *testing.T) {
	tests := []struct {
		text string
		exp  string
		ok   bool
	}{
		{"|Description = A dog\n|Date=2020\n", "A dog", true},
		{"|description={{en|1=Two\nlines}}\n|source=own", "{{en|1=Two\nlines}}", true},
		{"|DESCRIPTION=last field", "last field", true},
		{"no such field", "", false},
	}
	for _, test := range tests {
		got, ok := FindDescription(test.text)
		if got != test.exp || ok != test.ok {
			t.Errorf("Expected (%q, %v) for %q, got (%q, %v)",
				test.exp, test.ok, test.text, got, ok)
		}
	}
}

func TestFindLicense(t *testing.T) {
	tests := []struct {
		text string
		exp  string
		ok   bool
	}{
		{"== {{int:license-header}} ==\n{{PD-old-100}}\n", "{{PD-old-100}}", true},
		{"=={{int:license-header}}==\n\n{{self|GFDL|cc-by-sa-all}}\n{{Other}}", "{{self|GFDL|cc-by-sa-all}}", true},
		{"{{PD-old}}\n== {{int:license-header}} ==\nnone", "", false},
		{"{{PD-old}}", "", false},
	}
	for _, test := range tests {
		got, ok := FindLicense(test.text)
		if got != test.exp || ok != test.ok {
			t.Errorf("Expected (%q, %v) for %q, got (%q, %v)",
				test.exp, test.ok, test.text, got, ok)
		}
	}
}
