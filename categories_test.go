package wikidump

import (
	"reflect"
	"testing"
)

func TestCategoryID(t *testing.T) {
	tests := []struct {
		link string
		exp  string
		ok   bool
	}{
		{"Category:Paintings", "CPaintings", true},
		{"Category:Paintings|Bar", "CPaintings", true},
		{"category:Paintings", "CPaintings", true},
		{"CATEGORY: Paintings |*", "CPaintings", true},
		{"Category:Cafés in Paris", "CCafés in Paris", true},
		{"Category:", "", false},
		{"File:Paintings.jpg", "", false},
		{"User:Category", "", false},
		{"Cat", "", false},
	}
	for _, test := range tests {
		got, ok := CategoryID(test.link)
		if got != test.exp || ok != test.ok {
			t.Errorf("Expected (%q, %v) for %q, got (%q, %v)",
				test.exp, test.ok, test.link, got, ok)
		}
	}
}

func TestDisplayNameDoesNotMatter(t *testing.T) {
	a := FindCategories("[[Category:Foo]]")
	b := FindCategories("[[Category:Foo|Bar]]")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Expected %v == %v", a, b)
	}
	if !reflect.DeepEqual(a, []string{"CFoo"}) {
		t.Fatalf("Expected [CFoo], got %v", a)
	}
}

func TestFindCategories(t *testing.T) {
	text := `{{Information|description=[[Category:Not in a link]]}}
[[Category:B]] [[Category:A|sort key]]
[[File:Other.jpg|thumb]] [[Commons:Welcome]]
<!-- [[Category:Commented]] -->
<nowiki>[[Category:Escaped]]</nowiki>
[[Category:B]]`
	exp := []string{"CA", "CB", "CNot in a link"}
	got := FindCategories(text)
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("Expected %#v, got %#v", exp, got)
	}
}

func TestFindCategoriesNone(t *testing.T) {
	if got := FindCategories("no links here"); len(got) != 0 {
		t.Fatalf("Expected no categories, got %v", got)
	}
}
