// Package layout computes the spatial arrangement of the atlas canvas.
//
// The layout is a pure function of the record set and [Options]:
//
//  1. Size: each non-empty category gets a box sized by its item count ([BoxSize])
//  2. Pack: boxes are assigned to fixed-width columns, tallest first, always
//     into the currently shortest column ([Pack])
//  3. Place: items are positioned inside their box without overlapping ([Place])
//
// [Compute] runs all three stages and returns a [Layout] with absolute canvas
// coordinates for every project.
//
// # Placement
//
// Fewer than five items use hand-tuned scatter patterns. Larger groups use
// either a jittered grid ([PlacementGrid], the default) or rejection sampling
// ([PlacementSample]) that tries seeded candidate positions until one keeps
// the minimum separation, falling back to the candidate with the largest
// clearance when the attempt budget runs out.
//
// When a box is not [Crowded] and any of these leaves two items closer than
// the minimum separation, the group is laid on a lattice spaced at least that
// far apart instead. Crowded boxes keep the best-effort result.
//
// All pseudo-randomness is seeded from [atlas.HashString] of the project id,
// so the same input always produces the same positions.
//
// # Packing
//
// Column packing is a greedy heuristic, not an optimal bin packing. The only
// guarantees are that every box is placed exactly once and boxes in the same
// column never overlap.
package layout
