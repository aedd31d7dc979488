package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/atlas/pkg/atlas"
)

// Point is a position in canvas units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// scatterPatterns are fractional positions inside the usable area, indexed by
// item count.
var scatterPatterns = [][]Point{
	1: {{0.5, 0.5}},
	2: {{0.25, 0.35}, {0.75, 0.65}},
	3: {{0.2, 0.25}, {0.75, 0.35}, {0.4, 0.75}},
	4: {{0.2, 0.25}, {0.8, 0.2}, {0.25, 0.75}, {0.8, 0.7}},
}

// ScatterLimit is the largest group placed with a scatter pattern.
const ScatterLimit = 4

// UsableArea returns the region of a box that item centers are placed in.
// Each dimension is at least one unit.
func UsableArea(size Size, opts Options) Rect {
	return Rect{
		X:      opts.ItemPad,
		Y:      opts.ItemTopPad,
		Width:  max(size.Width-2*opts.ItemPad, 1),
		Height: max(size.Height-opts.ItemTopPad-opts.ItemPad, 1),
	}
}

// Crowded reports whether n items cannot all keep minSep apart in area, that
// is n*minSep² exceeds the area.
func Crowded(n int, area Rect, minSep float64) bool {
	return float64(n)*minSep*minSep > area.Width*area.Height
}

// Place positions items inside a box of the given size, relative to the
// box's top-left corner. The result depends only on the item ids, their
// order, the box size, itemSize and opts. Zero items yield an empty map.
//
// Unless the box is crowded, no two items end up closer than
// itemSize*opts.SeparationFactor.
func Place(items []atlas.Project, size Size, itemSize float64, opts Options) map[string]Point {
	out := make(map[string]Point, len(items))
	if len(items) == 0 {
		return out
	}
	area := UsableArea(size, opts)
	minSep := itemSize * opts.SeparationFactor
	switch {
	case len(items) <= ScatterLimit:
		placeScatter(items, area, opts, out)
	case opts.Placement == PlacementSample:
		placeSample(items, area, minSep, opts, out)
	default:
		placeGrid(items, area, opts, out)
	}
	if minSep > 0 && !Crowded(len(items), area, minSep) && closest(out) < minSep {
		placeSpaced(items, area, minSep, opts, out)
	}
	return out
}

// closest returns the smallest distance between two placed points.
func closest(pts map[string]Point) float64 {
	all := make([]Point, 0, len(pts))
	for _, p := range pts {
		all = append(all, p)
	}
	d := math.Inf(1)
	for i, p := range all {
		d = min(d, clearance(p, all[i+1:]))
	}
	return d
}

// placeSpaced lays items on a jittered lattice whose rows and columns are at
// least minSep apart. A non-crowded area always has room for such a lattice:
// (floor(W/d)+1)*(floor(H/d)+1) > W*H/d² >= n.
func placeSpaced(items []atlas.Project, area Rect, minSep float64, opts Options, out map[string]Point) {
	n := len(items)
	cols, rows := GridShape(n, area)
	maxCols := int(math.Floor(area.Width/minSep)) + 1
	maxRows := int(math.Floor(area.Height/minSep)) + 1
	if cols > maxCols {
		cols = maxCols
		rows = (n + cols - 1) / cols
	}
	if rows > maxRows {
		rows = maxRows
		cols = (n + rows - 1) / rows
	}
	xs := newAxis(cols, area.X, area.Width, minSep, opts.GridJitter)
	ys := newAxis(rows, area.Y, area.Height, minSep, opts.GridJitter)

	for i, p := range items {
		jx, jy := jitter(p.ID)
		out[p.ID] = Point{X: xs.at(i%cols, jx), Y: ys.at(i/cols, jy)}
	}
}

// axis spaces k lattice lines over [start, start+length]. Lines are cell
// centers when cells are wide enough, otherwise they run edge to edge.
type axis struct {
	k             int
	start, length float64
	step, offset  float64
	slack         float64
}

func newAxis(k int, start, length, minSep, jitterFrac float64) axis {
	a := axis{k: k, start: start, length: length}
	switch {
	case k == 1:
		a.offset = length / 2
		a.slack = length / 2 * jitterFrac
	case length/float64(k) >= minSep:
		a.step = length / float64(k)
		a.offset = a.step / 2
	default:
		a.step = length / float64(k-1)
	}
	if k > 1 {
		// Neighbors may each move by slack and stay minSep apart.
		a.slack = max(min((a.step-minSep)/2, a.step*jitterFrac), 0)
	}
	return a
}

func (a axis) at(i int, j float64) float64 {
	v := a.start + a.offset + float64(i)*a.step + j*a.slack
	return min(max(v, a.start), a.start+a.length)
}

func placeScatter(items []atlas.Project, area Rect, opts Options, out map[string]Point) {
	pattern := scatterPatterns[len(items)]
	for i, p := range items {
		jx, jy := jitter(p.ID)
		base := pattern[i]
		out[p.ID] = Point{
			X: area.X + (base.X+jx*opts.ScatterJitter)*area.Width,
			Y: area.Y + (base.Y+jy*opts.ScatterJitter)*area.Height,
		}
	}
}

// GridShape returns the columns and rows used for n items in area. The grid
// approximates the area's aspect ratio and always has at least n cells.
func GridShape(n int, area Rect) (cols, rows int) {
	aspect := area.Width / area.Height
	cols = max(int(math.Ceil(math.Sqrt(float64(n)*aspect))), 1)
	rows = int(math.Ceil(float64(n) / float64(cols)))
	for cols*rows < n {
		if area.Width/float64(cols) > area.Height/float64(rows) {
			cols++
		} else {
			rows++
		}
	}
	return cols, rows
}

func placeGrid(items []atlas.Project, area Rect, opts Options, out map[string]Point) {
	cols, rows := GridShape(len(items), area)
	cellW := area.Width / float64(cols)
	cellH := area.Height / float64(rows)
	maxJitter := min(cellW, cellH) * opts.GridJitter

	for i, p := range items {
		col, row := i%cols, i/cols
		jx, jy := jitter(p.ID)
		out[p.ID] = Point{
			X: area.X + cellW*(float64(col)+0.5) + jx*maxJitter,
			Y: area.Y + cellH*(float64(row)+0.5) + jy*maxJitter,
		}
	}
}

func placeSample(items []atlas.Project, area Rect, minSep float64, opts Options, out map[string]Point) {
	placed := make([]Point, 0, len(items))
	for _, p := range items {
		rng := seeded(uint64(atlas.HashString(p.ID)))
		pt, ok := Point{}, false
		for range opts.SampleAttempts {
			c := candidate(rng, area)
			if clearance(c, placed) >= minSep {
				pt, ok = c, true
				break
			}
		}
		if !ok {
			pt = bestCandidate(rng, area, placed, max(opts.FallbackAttempts, 1))
		}
		placed = append(placed, pt)
		out[p.ID] = pt
	}
}

// bestCandidate keeps the candidate with the largest clearance. A candidate
// that coincides with a placed point is never kept.
func bestCandidate(rng *rand.Rand, area Rect, placed []Point, attempts int) Point {
	var best Point
	bestD := 0.0
	for range attempts {
		c := candidate(rng, area)
		if d := clearance(c, placed); d > bestD {
			best, bestD = c, d
		}
	}
	if bestD > 0 {
		return best
	}
	// Degenerate area: step along x from the last point.
	last := placed[len(placed)-1]
	return Point{X: last.X + math.Max(area.Width/float64(len(placed)+1), 1e-3), Y: last.Y}
}

// clearance is the distance from c to the nearest placed point.
func clearance(c Point, placed []Point) float64 {
	d := math.Inf(1)
	for _, q := range placed {
		d = min(d, c.Dist(q))
	}
	return d
}

func candidate(rng *rand.Rand, area Rect) Point {
	return Point{
		X: area.X + rng.Float64()*area.Width,
		Y: area.Y + rng.Float64()*area.Height,
	}
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// jitter returns two offsets in [-1, 1) derived from id: x from its hash,
// y from the hash plus one.
func jitter(id string) (float64, float64) {
	seed := uint64(atlas.HashString(id))
	return (seeded(seed).Float64() - 0.5) * 2, (seeded(seed+1).Float64() - 0.5) * 2
}
