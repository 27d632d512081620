// Command xor trains a small perceptron on the xor problem, by gradient descent or differential evolution.
//
// Progress is rendered into an animated gif, the per epoch errors are dumped as CSV and the trained
// weights are saved for later use. With -http the progress is also streamed over a websocket at /ws.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"

	"github.com/gorgonia/cellnet"
	"github.com/gorgonia/cellnet/builder"
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/encoding/gif"
	"github.com/gorgonia/cellnet/train"

	_ "net/http/pprof"
)

var (
	hidden  = flag.Int("hidden", 4, "hidden cells")
	epochs  = flag.Int("epochs", 5000, "training epochs")
	rate    = flag.Float64("rate", 0.5, "learning rate")
	online  = flag.Bool("online", false, "update the weights after every sample")
	method  = flag.String("trainer", "gd", "gd for gradient descent, de for differential evolution")
	seed    = flag.Int64("seed", 1337, "random seed")
	gifOut  = flag.String("gif", "xor.gif", "progress animation")
	csvOut  = flag.String("csv", "xor.csv", "per epoch errors")
	model   = flag.String("model", "xor.model", "trained weights")
	address = flag.String("http", "", "serve the progress websocket and pprof on this address")
)

func main() {
	flag.Parse()

	m := builder.NewMLP(builder.DefaultConfig())
	m.InputLayer(2)
	m.HiddenLayer(*hidden, cell.TanhCell, 1)
	m.OutputLayer(1, cell.SigmoidCell, 1)
	net, err := m.Generate()
	if err != nil {
		log.Fatalf("%+v", err)
	}
	log.Println(net)
	net.InitializeWeights(rand.New(rand.NewSource(*seed)))

	set := train.SampleSet{
		train.NewSample([]float64{0, 0}, []float64{0}),
		train.NewSample([]float64{0, 1}, []float64{1}),
		train.NewSample([]float64{1, 0}, []float64{1}),
		train.NewSample([]float64{1, 1}, []float64{0}),
	}

	f, err := os.Create(*gifOut)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	opts := []train.Option{
		train.WithRand(rand.New(rand.NewSource(*seed))),
		train.WithListener(gif.NewEncoder(f, 400, 600)),
	}
	if *address != "" {
		mon := NewMonitor()
		opts = append(opts, train.WithListener(mon))
		go func(h http.Handler) {
			mux := http.NewServeMux()
			mux.Handle("/ws", h)
			mux.Handle("/debug/pprof/", http.DefaultServeMux)
			log.Printf("http://%s/ws", *address)
			log.Println(http.ListenAndServe(*address, mux))
		}(mon)
	}

	conf := train.DefaultConfig()
	conf.Epochs = *epochs
	conf.Online = *online
	conf.LearningRate = *rate
	conf.ValidationInterval = 1
	conf.TargetError = 0.001
	var stats *train.Statistics
	switch *method {
	case "gd":
		gd := train.NewGradientDescent(net, conf, opts...)
		if err := gd.Train(set, nil); err != nil {
			log.Fatalf("%+v", err)
		}
		log.Printf("stopped after epoch %d with error %v", gd.Epoch(), gd.ValidationError())
		stats = &gd.Statistics
	case "de":
		conf.PopSize = 30
		conf.Mutation = train.BestTwo
		de := train.NewDifferentialEvolution(net, conf, opts...)
		if err := de.Train(set); err != nil {
			log.Fatalf("%+v", err)
		}
		log.Printf("stopped after generation %d with error %v", de.Epoch(), de.TrainError())
		stats = &de.Statistics
	default:
		log.Fatalf("unknown trainer %q", *method)
	}

	if err := stats.Dump(*csvOut); err != nil {
		log.Fatalf("%+v", err)
	}
	if err := cellnet.Save(*model, net); err != nil {
		log.Fatalf("%+v", err)
	}

	pool := cellnet.NewPool(net, 0)
	for _, s := range set {
		x := s.Inputs()
		out, err := pool.Infer([]float32{float32(x[0]), float32(x[1])})
		if err != nil {
			log.Fatalf("%+v", err)
		}
		fmt.Printf("%v xor %v = %.3f\n", x[0], x[1], out[0])
	}
	if err := pool.Close(); err != nil {
		log.Fatal(err)
	}
}
