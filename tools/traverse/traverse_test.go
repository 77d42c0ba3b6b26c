package main

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"testing"

	wikidump "github.com/HuyNg2024/ViQuae"
)

const shard = `<mediawiki>
  <page><title>File:A.jpg</title><ns>6</ns><id>1</id>
    <revision><timestamp>2021-03-01T10:00:00Z</timestamp>
      <text>{{Location|48|51|29.1|N|2|17|40.2|E}} [[Category:A]] [[Category:B]]</text></revision></page>
  <page><title>File:B.JPG</title><ns>6</ns><id>2</id>
    <revision><timestamp>2021-03-01T10:00:00Z</timestamp>
      <text>{{Location|95|200}} [[Category:A]]</text></revision></page>
  <page><title>Category:A</title><ns>14</ns><id>3</id>
    <revision><timestamp>2021-03-01T10:00:00Z</timestamp><text>about A</text></revision></page>
</mediawiki>
`

func TestTraverse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commonswiki-latest-pages-articles1.xml-p1p3")
	if err := os.WriteFile(path, []byte(shard), 0644); err != nil {
		t.Fatal(err)
	}
	errPath := filepath.Join(dir, "errors.gob")

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--dump-dir", dir, "--parse-locations", "--errors", errPath, "--workers", "2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Error traversing: %v", err)
	}

	for _, want := range []string{"pages", "namespace 6", "namespace 14", ".jpg"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in\n%s", want, out)
		}
	}

	f, err := os.Open(errPath)
	if err != nil {
		t.Fatalf("Expected an error file: %v", err)
	}
	defer f.Close()
	var p wikidump.Page
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		t.Fatalf("Error decoding bad page: %v", err)
	}
	if p.Title != "File:B.JPG" {
		t.Fatalf("Expected File:B.JPG, got %v", p.Title)
	}
}

func TestCensus(t *testing.T) {
	c := newCensus()
	c.count(&wikidump.Page{Title: "File:a.PNG", NS: 6}, 2, false)
	c.count(&wikidump.Page{Title: "File:b.png", NS: 6}, 1, true)
	c.count(&wikidump.Page{Title: "Main Page", NS: 0}, 0, false)
	if c.pages != 3 || c.categories != 3 || c.badCoords != 1 {
		t.Fatalf("Unexpected census: %+v", c)
	}
	if c.extensions["png"] != 2 || c.namespaces[6] != 2 || c.namespaces[0] != 1 {
		t.Fatalf("Unexpected counts: %v %v", c.extensions, c.namespaces)
	}
}
