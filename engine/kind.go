package engine

import (
	"fmt"

	"github.com/gorgonia/cellnet/topology"
)

// Kind is the time iteration scheme of a network. It is fixed when the network is built.
type Kind uint8

const (
	FeedForward Kind = iota
	// OnlineRecurrent computes one frame per call, carrying state from the previous frame.
	OnlineRecurrent
	// OfflineRecurrent computes every frame up to the current one per call.
	OfflineRecurrent
	// Bidirectional is an offline recurrent network in which reversed layers visit frames last to first.
	Bidirectional
)

// KindOf selects the iteration scheme for a compiled topology.
func KindOf(t *topology.Topology) Kind {
	switch {
	case t.Recurrent && t.Offline && t.Bidirectional:
		return Bidirectional
	case t.Recurrent && t.Offline:
		return OfflineRecurrent
	case t.Recurrent:
		return OnlineRecurrent
	}
	return FeedForward
}

func (k Kind) String() string {
	switch k {
	case FeedForward:
		return "feed-forward"
	case OnlineRecurrent:
		return "online recurrent"
	case OfflineRecurrent:
		return "offline recurrent"
	case Bidirectional:
		return "bidirectional"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}
