package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorgonia/cellnet/train"
	"github.com/gorilla/websocket"
)

// Monitor streams the training progress as JSON over a websocket. It implements train.Listener.
// Epochs are dropped while no client is reading.
type Monitor struct {
	progress chan train.Progress
	done     chan struct{}
}

var upgrader = websocket.Upgrader{} // use default options

func NewMonitor() *Monitor {
	return &Monitor{
		progress: make(chan train.Progress, 64),
		done:     make(chan struct{}),
	}
}

func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()
	for {
		var p train.Progress
		select {
		case p = <-m.progress:
		case <-m.done:
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "training finished"))
			return
		case <-r.Context().Done():
			return
		}
		b, err := json.Marshal(p)
		if err != nil {
			log.Println("marshal:", err)
			return
		}
		if err = c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Println("write:", err)
			return
		}
	}
}

func (m *Monitor) Encode(p train.Progress) error {
	select {
	case m.progress <- p:
	default:
	}
	return nil
}

// Flush tells the connected clients that training is over.
func (m *Monitor) Flush() error {
	close(m.done)
	return nil
}
