// Command brnn trains a bidirectional recurrent network to reverse short sequences.
//
// The output at frame t must reproduce the input at frame T-1-t, which needs the past and the future of
// every frame: one hidden layer reads the sequence forwards, the other backwards. If the model file
// exists its weights are loaded and training is skipped.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"math/rand"
	"os"

	"github.com/gorgonia/cellnet"
	"github.com/gorgonia/cellnet/builder"
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/engine"
	"github.com/gorgonia/cellnet/topology"
	"github.com/gorgonia/cellnet/train"
)

var (
	length  = flag.Int("length", 6, "sequence length")
	hidden  = flag.Int("hidden", 8, "cells per direction")
	samples = flag.Int("samples", 200, "number of sequences")
	epochs  = flag.Int("epochs", 300, "training epochs")
	seed    = flag.Int64("seed", 1, "random seed")
	dot     = flag.String("dot", "", "write the block graph in dot format to this file")
	model   = flag.String("model", "brnn.model", "trained weights")
)

func build(frames, hidden int) (*engine.Network, error) {
	b := builder.New(builder.Config{Frames: frames})
	in := builder.InputLayer(b, 1)
	fw := builder.HiddenLayer(b, hidden, cell.TanhCell, 1)
	bw := builder.HiddenLayer(b, hidden, cell.TanhCell, 1)
	out := builder.OutputLayer(b, 1, cell.LinearCell, 1)

	b.WeightedLinkLayer(in, fw)
	b.WeightedLinkLayer(in, bw)
	b.WeightedLinkLayer(fw, fw)
	b.WeightedLinkLayer(bw, bw)
	b.WeightedLinkLayer(fw, out)
	b.WeightedLinkLayer(bw, out)
	b.DefineLayerAsReversed(bw)
	return b.Generate()
}

func reversals(r *rand.Rand, n, length int) train.SampleSet {
	set := make(train.SampleSet, 0, n)
	for i := 0; i < n; i++ {
		x := make([]float64, length)
		y := make([]float64, length)
		for t := range x {
			x[t] = r.Float64()*2 - 1
		}
		for t := range y {
			y[t] = x[length-1-t]
		}
		s, err := train.NewSequenceSample(x, y, 1, 1)
		if err != nil {
			panic(err)
		}
		set = append(set, s)
	}
	return set
}

func main() {
	flag.Parse()
	r := rand.New(rand.NewSource(*seed))

	net, err := build(*length, *hidden)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	fmt.Println(net.Topology())
	if *dot != "" {
		s, err := topology.ToDot(net.Topology())
		if err != nil {
			log.Fatalf("%+v", err)
		}
		if err := ioutil.WriteFile(*dot, []byte(s), 0644); err != nil {
			log.Fatal(err)
		}
	}

	set := reversals(r, *samples, *length)
	test := set.Split(*samples/5, r)

	if _, err := os.Stat(*model); err == nil {
		if err := cellnet.Load(*model, net); err != nil {
			log.Fatalf("%+v", err)
		}
		log.Printf("loaded %s", *model)
	} else {
		net.InitializeWeights(r)
		valid := set.Split(len(set)/5, r)
		conf := train.DefaultConfig()
		conf.Epochs = *epochs
		conf.LearningRate = 0.005
		conf.EarlyStopping = true
		gd := train.NewGradientDescent(net, conf, train.WithRand(r))
		if err := gd.Train(set, valid); err != nil {
			log.Fatalf("%+v", err)
		}
		fmt.Print(gd.Log())
		if err := cellnet.Save(*model, net); err != nil {
			log.Fatalf("%+v", err)
		}
	}

	pool := cellnet.NewPool(net, 0)
	defer pool.Close()
	e, err := pool.Error(test)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	fmt.Printf("test error over %d sequences: %.6f\n", len(test), e)
	fmt.Printf("within 0.01: %.1f%%\n", 100*train.RegressionRatio(net, test, 0.01))

	s := test[0]
	out, err := pool.Infer(toFloat32(s.Inputs()))
	if err != nil {
		log.Fatalf("%+v", err)
	}
	fmt.Printf("input  %.3f\ntarget %.3f\nlast output %.3f\n", s.Inputs(), s.Targets(), out)
}

func toFloat32(a []float64) []float32 {
	retVal := make([]float32, len(a))
	for i, v := range a {
		retVal[i] = float32(v)
	}
	return retVal
}
