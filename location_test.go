package wikidump

import (
	"math"
	"testing"
)

type testinput struct {
	input string
	lon   float64
	lat   float64
}

var testdata = []testinput{
	{
		"{{Location dec|34.1996350|-118.1746540}}",
		-118.1746540,
		34.1996350,
	},
	{
		"{{Location|48|51|29.6|N|2|17|40.2|E}}",
		2.294500,
		48.858222,
	},
	{
		"{{location|37.2750|-81.1240|region:US_type:landmark}}",
		-81.1240,
		37.2750,
	},
	{
		"{{Object location|30.325939|-87.316879}}",
		-87.316879,
		30.325939,
	},
	{
		"{{Camera location|33|51|35.9|S|151|12|40|E|heading:NE}}",
		151.211111,
		-33.859972,
	},
	{
		"{{Location|40.94759700 |-72.89820700}}",
		-72.89820700,
		40.94759700,
	},
	{
		"{{Location|25.898938|S|139.351694}}",
		139.351694,
		-25.898938,
	},
	{
		"{{Location|48|51|N|2|17|E}}",
		2.283333,
		48.850000,
	},
	{
		"{{Location|12.5|N|70|W|region:AW}}",
		-70,
		12.5,
	},
}

func assertEpsilon(t *testing.T, input, field string, expected, got float64) {
	if math.Abs(got-expected) > 0.00001 {
		t.Fatalf("Expected %v for %v of %v, got %v",
			expected, field, input, got)
	}
}

func testOne(t *testing.T, ti testinput, input string) {
	loc, err := ParseLocation(input)
	if err != nil {
		t.Fatalf("Error on %v: %v", input, err)
	}
	assertEpsilon(t, input, "lon", ti.lon, loc.Lon)
	assertEpsilon(t, input, "lat", ti.lat, loc.Lat)
	t.Logf("Results for %s:  %#v", input, loc)
}

func TestLocationSimple(t *testing.T) {
	for _, ti := range testdata {
		testOne(t, ti, ti.input)
	}
}

func TestLocationWithGarbage(t *testing.T) {
	for _, ti := range testdata {
		input := " some random garbage " + ti.input + " and stuff"
		testOne(t, ti, input)
	}
}

func TestLocationMultiline(t *testing.T) {
	for _, ti := range testdata {
		input := "== {{int:filedesc}} ==\n\nnewlines\n" + ti.input + "\n[[Category:Stuff]]"
		testOne(t, ti, input)
	}
}

func TestNoLocation(t *testing.T) {
	tests := []string{
		"",
		"{{Information|Date=2020}}",
		"<!-- {{Location|1|2}} -->",
		"{{Location|N}}",
	}
	for _, in := range tests {
		if _, err := ParseLocation(in); err != ErrNoLocation {
			t.Errorf("Expected ErrNoLocation for %q, got %v", in, err)
		}
	}
}

func TestLocationOutOfRange(t *testing.T) {
	_, err := ParseLocation("{{Location|91|10}}")
	if err == nil || err == ErrNoLocation {
		t.Fatalf("Expected a range error, got %v", err)
	}
}

func TestLocationMalformed(t *testing.T) {
	_, err := ParseLocation("{{Location|1|2|3|4|N|5|E}}")
	if err == nil || err == ErrNoLocation {
		t.Fatalf("Expected a malformed location error, got %v", err)
	}
}
