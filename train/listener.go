package train

import "fmt"

// Progress is the state of a trainer after an epoch.
type Progress struct {
	Trainer         string
	Epoch           int
	Epochs          int
	TrainError      float64
	ValidationError float64
}

func (p Progress) String() string {
	return fmt.Sprintf("%s epoch %d/%d: train %.6f validation %.6f", p.Trainer, p.Epoch+1, p.Epochs, p.TrainError, p.ValidationError)
}

// Listener observes training. Encode is called after every epoch and Flush once training has finished.
//
// An example Listener is the gif encoder in encoding/gif.
type Listener interface {
	Encode(p Progress) error
	Flush() error
}
