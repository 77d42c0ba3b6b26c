package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	wikidump "github.com/HuyNg2024/ViQuae"
)

const shard = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.10/">
  <page>
    <title>File:Mona Lisa.jpg</title>
    <ns>6</ns>
    <id>1</id>
    <revision>
      <id>10</id>
      <timestamp>2021-03-01T10:00:00Z</timestamp>
      <contributor><username>alice</username><id>7</id></contributor>
      <text xml:space="preserve">|Date=1503
[[Category:Mona Lisa]]</text>
    </revision>
  </page>
  <page>
    <title>File:Mona Lisa.svg</title>
    <ns>6</ns>
    <id>2</id>
    <revision>
      <id>11</id>
      <timestamp>2021-03-01T10:00:00Z</timestamp>
      <contributor><username>alice</username><id>7</id></contributor>
      <text xml:space="preserve">[[Category:Mona Lisa]]</text>
    </revision>
  </page>
</mediawiki>
`

func setup(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	dumpDir := filepath.Join(root, "commonswiki")
	subset := filepath.Join(root, "meerqat_test")
	for _, d := range []string{dumpDir, subset} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	err := os.WriteFile(filepath.Join(dumpDir, "commonswiki-latest-pages-articles1.xml-p1p2"),
		[]byte(shard), 0644)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(subset, "entities.json")
	err = os.WriteFile(path, []byte(`{"Q12418": {"n_questions": 4, "categories": {"CMona Lisa": 1}}}`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return root, path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAttach(t *testing.T) {
	root, path := setup(t)
	report := filepath.Join(root, "report.md")
	out, err := run(t, "test", "--data-root", root, "--report", report)
	if err != nil {
		t.Fatalf("Error running: %v\n%s", err, out)
	}
	if !strings.Contains(out, "count") || !strings.Contains(out, "1.000000") {
		t.Errorf("Expected a summary table, got\n%s", out)
	}

	es, err := wikidump.LoadEntities(path)
	if err != nil {
		t.Fatal(err)
	}
	img := es["Q12418"].Images["File:Mona Lisa.jpg"]
	if img == nil || img.Date != "1503" || len(es["Q12418"].Images) != 1 {
		t.Fatalf("Unexpected images: %v", es["Q12418"].Images)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("Expected a report: %v", err)
	}
	if !strings.Contains(string(data), "Commons images of test") {
		t.Errorf("Unexpected report:\n%s", data)
	}
}

func TestAttachExtensions(t *testing.T) {
	root, path := setup(t)
	if out, err := run(t, "test", "--data-root", root, "--extensions", "svg"); err != nil {
		t.Fatalf("Error running: %v\n%s", err, out)
	}
	es, err := wikidump.LoadEntities(path)
	if err != nil {
		t.Fatal(err)
	}
	if es["Q12418"].Images["File:Mona Lisa.svg"] == nil || len(es["Q12418"].Images) != 1 {
		t.Fatalf("Expected only the svg, got %v", es["Q12418"].Images)
	}
}

func TestAttachMissingSubset(t *testing.T) {
	root, _ := setup(t)
	if _, err := run(t, "nope", "--data-root", root); err == nil {
		t.Fatalf("Expected an error for a missing subset")
	}
}

func TestAttachNeedsSubset(t *testing.T) {
	if _, err := run(t); err == nil {
		t.Fatalf("Expected an error without a subset")
	}
}
