// Package collision resolves pairwise contacts between bodies.
//
// Contacts are found by an O(n²) sweep over unordered pairs. Each
// overlapping, approaching pair exchanges an impulse along the contact
// normal
//
//	j = -(1+e)·(vb-va)·n / (1/ma + 1/mb)
//
// and is then pushed apart by half the overlap each. Bodies with zero mass
// are treated as immovable. The sweep has no spatial partitioning and is
// meant for the few dozen bodies an animation shows.
package collision
