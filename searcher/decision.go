package searcher

import (
	"expit/game"
)

// decision is a search tree node. Its rewards are accumulated from the
// perspective of the mover, the seat whose move led to it.
type decision struct {
	parent   *decision
	mover    game.Seat
	moves    []game.Move
	priors   []float64
	children []*decision
	rewards  float64
	visits   float64
}

func newDecision(parent *decision, mover game.Seat) *decision {
	return &decision{parent: parent, mover: mover}
}

func (d *decision) isExpanded() bool {
	return d.children != nil
}

// expand creates one child per legal move of the node's state, with the
// evaluation's policy as priors.
func (d *decision) expand(state game.State, priors []float64) {
	if d.isExpanded() {
		panic("node already expanded")
	}
	d.moves = state.LegalMoves()
	if len(priors) != len(d.moves) {
		panic("priors do not match legal moves")
	}
	d.priors = priors
	d.children = make([]*decision, len(d.moves))
	for i := range d.children {
		d.children[i] = newDecision(d, state.Seat())
	}
}

// pickChild returns the index of the child with the highest PUCT score, the
// first one on ties.
func (d *decision) pickChild(cPuct float64) int {
	if len(d.children) == 0 {
		panic("node has no children")
	}

	policy := newPUCT(cPuct, d.visits)
	maxIndex := 0
	maxScore := policy.evaluate(d.children[0].rewards, d.children[0].visits, d.priors[0])
	for i, child := range d.children[1:] {
		if score := policy.evaluate(child.rewards, child.visits, d.priors[i+1]); score > maxScore {
			maxScore = score
			maxIndex = i + 1
		}
	}
	return maxIndex
}

// Backup updates the node's statistics and returns its parent.
func (d *decision) Backup(reward rewarder) *decision {
	d.rewards += reward(d.mover)
	d.visits++
	return d.parent
}

// visitCounts of the children, in LegalMoves() order.
func (d *decision) visitCounts() []float64 {
	counts := make([]float64, len(d.children))
	for i, child := range d.children {
		counts[i] = child.visits
	}
	return counts
}
