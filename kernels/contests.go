package kernels

import (
	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
)

// contestWinner is the shared "redundant deterministic bid comparison"
// primitive (§4.5.4, §9's "Redundant bid comparison" glossary entry):
// scanning a target voxel's six neighbors for intents that name it as
// their direction target, picking the highest bid with ties broken by
// higher voxel index. Both a target voxel resolving who moved into it
// and a source voxel checking whether its own intent won call this with
// the same target index and always agree, since it's a pure function of
// the read buffer and intent buffer only.
type contestWinner struct {
	Idx    int
	Action layout.ActionType
	Bid    uint32
	Found  bool
}

// replicateMoveWinnerAt finds the winning Replicate-or-Move intent
// targeting targetIdx, per the empty-voxel case in §4.5.4.
func replicateMoveWinnerAt(fab *buffers.Fabric, readBuf []uint32, intents []uint32, targetIdx int) contestWinner {
	tx, ty, tz := fab.Coords3D(targetIdx)
	var best contestWinner
	for _, dir := range faceDirections {
		nidx, ok := neighborIndex(fab, tx, ty, tz, dir)
		if !ok {
			continue
		}
		if readVoxel(fab, readBuf, nidx).Type != layout.Protocell {
			continue
		}
		action, ndir, bid := layout.DecodeIntent(readIntent(fab, intents, nidx))
		if action != layout.Replicate && action != layout.Move {
			continue
		}
		if ndir != dir.Opposite() {
			continue
		}
		if !best.Found || bid > best.Bid || (bid == best.Bid && nidx > best.Idx) {
			best = contestWinner{Idx: nidx, Action: action, Bid: bid, Found: true}
		}
	}
	return best
}

// predateWinnerAt finds the winning Predate intent targeting targetIdx.
// Existence of any winner is itself the "does the prey at targetIdx get
// eaten this tick" answer (§4.5.4's PP1 prey-check), since any Predate
// intent pointed at a cell is, by definition, won by whichever one has
// the highest bid.
func predateWinnerAt(fab *buffers.Fabric, readBuf []uint32, intents []uint32, targetIdx int) contestWinner {
	tx, ty, tz := fab.Coords3D(targetIdx)
	var best contestWinner
	for _, dir := range faceDirections {
		nidx, ok := neighborIndex(fab, tx, ty, tz, dir)
		if !ok {
			continue
		}
		if readVoxel(fab, readBuf, nidx).Type != layout.Protocell {
			continue
		}
		action, ndir, bid := layout.DecodeIntent(readIntent(fab, intents, nidx))
		if action != layout.Predate || ndir != dir.Opposite() {
			continue
		}
		if !best.Found || bid > best.Bid || (bid == best.Bid && nidx > best.Idx) {
			best = contestWinner{Idx: nidx, Action: action, Bid: bid, Found: true}
		}
	}
	return best
}
