package scheduler

import (
	"expit/game"
	"expit/searcher"
)

type reply struct {
	evaluation searcher.Evaluation
	err        error
}

// request is one state awaiting evaluation. Its reply slot belongs to the
// requesting worker and receives exactly one reply per request.
type request struct {
	worker int
	state  game.State
	reply  chan<- reply
}

// completion is sent once by every worker when its game is over.
type completion struct {
	worker    int
	positions []game.Position
	err       error
}

// signal tells the coordinator what to do after handling a message.
type signal int

const (
	proceed signal = iota
	roundReady
	terminate
)

func (s signal) String() string {
	switch s {
	case roundReady:
		return "roundReady"
	case terminate:
		return "terminate"
	default:
		return "proceed"
	}
}
