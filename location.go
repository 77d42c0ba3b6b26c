package wikidump

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var locationRE *regexp.Regexp

// ErrNoLocation is returned when a page carries no usable location
// template.
var ErrNoLocation = errors.New("no location data found")

func init() {
	locationRE = regexp.MustCompile(
		`(?i){{\s*(?:camera |object )?location(?: dec)?\s*\|([^}]*)}}`)
}

// Coord is a geographical position in decimal degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// axis collects the degree, minute and second parameters of one
// coordinate until a hemisphere letter closes it.
type axis struct {
	parts []float64
	sign  float64
}

func (a axis) degrees() float64 {
	v, unit := 0.0, 1.0
	for _, p := range a.parts {
		v += p / unit
		unit *= 60
	}
	return a.sign * v
}

var hemispheres = map[string]float64{"N": 1, "E": 1, "S": -1, "W": -1}

// ParseLocation parses the first {{Location}}, {{Location dec}},
// {{Object location}} or {{Camera location}} template of a file page.
//
// Coordinates are either two signed decimals (lat|lon) or groups of
// degrees, minutes and seconds each closed by N, S, E or W.  Named
// parameters such as region:FR or heading:NE are skipped.
func ParseLocation(text string) (Coord, error) {
	m := locationRE.FindStringSubmatch(cleanText(text))
	if m == nil {
		return Coord{}, ErrNoLocation
	}

	var axes []axis
	cur := axis{sign: 1}
	lettered := false
	for _, p := range strings.Split(m[1], "|") {
		p = strings.TrimSpace(p)
		if f, err := strconv.ParseFloat(p, 64); err == nil {
			if len(cur.parts) == 3 {
				return Coord{}, errors.Errorf("malformed location %q", m[1])
			}
			cur.parts = append(cur.parts, f)
			continue
		}
		sign, ok := hemispheres[p]
		if !ok || len(cur.parts) == 0 {
			continue
		}
		lettered = true
		cur.sign = sign
		axes = append(axes, cur)
		cur = axis{sign: 1}
	}
	switch {
	case !lettered && len(axes) == 0 && len(cur.parts) == 2:
		axes = []axis{{cur.parts[:1], 1}, {cur.parts[1:], 1}}
	case len(cur.parts) > 0:
		axes = append(axes, cur)
	}
	if len(axes) != 2 {
		return Coord{}, ErrNoLocation
	}

	rv := Coord{Lat: axes[0].degrees(), Lon: axes[1].degrees()}
	if math.Abs(rv.Lat) > 90 {
		return Coord{}, errors.Errorf("invalid latitude: %v", rv.Lat)
	}
	if math.Abs(rv.Lon) > 180 {
		return Coord{}, errors.Errorf("invalid longitude: %v", rv.Lon)
	}
	return rv, nil
}
