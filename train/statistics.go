package train

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Statistics records the errors of every epoch.
type Statistics struct {
	Epochs     []int
	Train      []float64
	Validation []float64
}

func (s *Statistics) reset() {
	s.Epochs = s.Epochs[:0]
	s.Train = s.Train[:0]
	s.Validation = s.Validation[:0]
}

func (s *Statistics) update(p Progress) {
	s.Epochs = append(s.Epochs, p.Epoch)
	s.Train = append(s.Train, p.TrainError)
	s.Validation = append(s.Validation, p.ValidationError)
}

// WriteCSV writes one record per epoch after a header.
func (s *Statistics) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "train", "validation"}); err != nil {
		return errors.WithStack(err)
	}
	records := make([][]string, 0, len(s.Epochs))
	for i, e := range s.Epochs {
		records = append(records, []string{
			strconv.Itoa(e),
			strconv.FormatFloat(s.Train[i], 'f', 6, 64),
			strconv.FormatFloat(s.Validation[i], 'f', 6, 64),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Dump writes the statistics as CSV into filename.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return s.WriteCSV(f)
}
