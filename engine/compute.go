package engine

import "github.com/gorgonia/cellnet/topology"

const allLayers = -1

// Compute runs the forward pass.
//
// Feed-forward and online recurrent networks compute the current frame only. Offline and bidirectional
// networks compute every frame from 0 up to the current one, which is taken as the last frame of the
// sequence; the frame index is restored afterwards.
func (n *Network) Compute() {
	switch n.kind {
	case FeedForward:
		n.computeFeedForward()
	case OnlineRecurrent:
		n.computeOnline()
	case OfflineRecurrent:
		n.computeOffline()
	case Bidirectional:
		n.computeBidirectional()
	}
}

// ComputeGradient runs the backward pass. The error of the output cells must already have been placed by
// Error (online) or by Error on the last frame (offline).
func (n *Network) ComputeGradient() {
	switch n.kind {
	case FeedForward:
		n.gradientFeedForward()
	case OnlineRecurrent:
		n.gradientOnline()
	case OfflineRecurrent:
		n.gradientOffline()
	case Bidirectional:
		n.gradientBidirectional()
	}
}

func (n *Network) computeFeedForward() {
	n.log("compute ff frame %d", n.frame)
	for l := range n.topo.Layers {
		n.computeLayerActivations(l, n.frame)
	}
}

func (n *Network) gradientFeedForward() {
	n.log("gradient ff frame %d", n.frame)
	for l := len(n.topo.Layers) - 1; l >= 0; l-- {
		n.computeLayerGradients(l, n.frame)
	}
}

func (n *Network) computeOnline() {
	f := n.frame
	n.log("compute online frame %d", f)
	if f > 0 {
		n.copyOutput(f-1, f, allLayers)
	}
	for l := range n.topo.Layers {
		n.computeLayerActivations(l, f)
	}
}

func (n *Network) gradientOnline() {
	f := n.frame
	n.log("gradient online frame %d", f)
	if f < n.data.Frames-1 {
		n.copyGradOutput(f+1, f, allLayers)
	}
	for l := len(n.topo.Layers) - 1; l >= 0; l-- {
		n.computeLayerGradients(l, f)
	}
}

func (n *Network) computeOffline() {
	last := n.frame
	n.log("compute offline frames 0..%d", last)
	for t := 0; t <= last; t++ {
		if t > 0 {
			n.copyOutput(t-1, t, allLayers)
		}
		for l := range n.topo.Layers {
			n.computeLayerActivations(l, t)
		}
	}
	n.frame = last
}

func (n *Network) gradientOffline() {
	last := n.frame
	n.log("gradient offline frames %d..0", last)
	for t := last; t >= 0; t-- {
		if t < last {
			n.copyGradOutput(t+1, t, allLayers)
		}
		for l := len(n.topo.Layers) - 1; l >= 0; l-- {
			n.computeLayerGradients(l, t)
		}
	}
	n.frame = last
}

// computeBidirectional runs one full sweep per layer. Forward layers visit frames 0..last, reversed layers
// last..0. The input layer holds only externally written values and is skipped.
func (n *Network) computeBidirectional() {
	last := n.frame
	n.log("compute bidirectional frames 0..%d", last)
	for l := range n.topo.Layers {
		if l == n.topo.InputLayer {
			continue
		}
		if n.topo.Layers[l].Dir == topology.Reversed {
			for t := last; t >= 0; t-- {
				if t < last {
					n.copyOutput(t+1, t, l)
				}
				n.computeLayerActivations(l, t)
			}
			continue
		}
		for t := 0; t <= last; t++ {
			if t > 0 {
				n.copyOutput(t-1, t, l)
			}
			n.computeLayerActivations(l, t)
		}
	}
	n.frame = last
}

func (n *Network) gradientBidirectional() {
	last := n.frame
	n.log("gradient bidirectional frames %d..0", last)
	for l := len(n.topo.Layers) - 1; l >= 0; l-- {
		if l == n.topo.InputLayer {
			continue
		}
		if n.topo.Layers[l].Dir == topology.Reversed {
			for t := 0; t <= last; t++ {
				if t > 0 {
					n.copyGradOutput(t-1, t, l)
				}
				n.computeLayerGradients(l, t)
			}
			continue
		}
		for t := last; t >= 0; t-- {
			if t < last {
				n.copyGradOutput(t+1, t, l)
			}
			n.computeLayerGradients(l, t)
		}
	}
	n.frame = last
}

// copyOutput carries the state of every computing block (of layer l, or of all layers) from frame src to
// frame dst: both outputs and inputs are copied.
func (n *Network) copyOutput(src, dst, l int) {
	for a := range n.topo.Blocks {
		b := &n.topo.Blocks[a]
		if b.Type.IsValue() || (l != allLayers && b.Layer != l) {
			continue
		}
		copy(n.data.Output[dst][b.Lo:b.Hi+1], n.data.Output[src][b.Lo:b.Hi+1])
		copy(n.data.Input[dst][b.Lo:b.Hi+1], n.data.Input[src][b.Lo:b.Hi+1])
	}
}

// copyGradOutput carries the deltas of every computing block outside the output layer from frame src to
// frame dst.
func (n *Network) copyGradOutput(src, dst, l int) {
	for a := range n.topo.Blocks {
		b := &n.topo.Blocks[a]
		if b.Type.IsValue() || b.Layer == n.topo.OutputLayer || (l != allLayers && b.Layer != l) {
			continue
		}
		copy(n.data.GradOutput[dst][b.Lo:b.Hi+1], n.data.GradOutput[src][b.Lo:b.Hi+1])
	}
}
