package train

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadSamples parses samples written as pairs of lines, the input sequence followed by the target
// sequence. Vectors are separated by ',' or ';', the values of a vector by white space. Empty lines and
// lines starting with '#' are skipped. Short vectors are padded with zeros to the widest vector of their
// sequence.
func ReadSamples(r io.Reader) (SampleSet, error) {
	var set SampleSet
	var pending []string
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		l := strings.TrimSpace(sc.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		pending = append(pending, l)
		if len(pending) < 2 {
			continue
		}
		in, inSize, err := parseSequence(pending[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line-1)
		}
		tgt, tgtSize, err := parseSequence(pending[1])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		s, err := NewSequenceSample(in, tgt, inSize, tgtSize)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		set = append(set, s)
		pending = pending[:0]
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return set, nil
}

func parseSequence(l string) (data []float64, size int, err error) {
	vecs := strings.FieldsFunc(l, func(r rune) bool { return r == ',' || r == ';' })
	parsed := make([][]float64, len(vecs))
	for i, v := range vecs {
		for _, f := range strings.Fields(v) {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, 0, errors.WithStack(err)
			}
			parsed[i] = append(parsed[i], x)
		}
		if len(parsed[i]) > size {
			size = len(parsed[i])
		}
	}
	data = make([]float64, len(parsed)*size)
	for i, p := range parsed {
		copy(data[i*size:], p)
	}
	return data, size, nil
}

// WriteSamples writes set in the format read by ReadSamples.
func WriteSamples(w io.Writer, set SampleSet) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d samples\n", len(set))
	for _, s := range set {
		writeSequence(bw, s.Inputs(), s.InputSize())
		writeSequence(bw, s.Targets(), s.TargetSize())
	}
	return errors.WithStack(bw.Flush())
}

func writeSequence(w *bufio.Writer, data []float64, size int) {
	for off := 0; off < len(data); off += size {
		if off > 0 {
			w.WriteString(", ")
		}
		for i, x := range data[off : off+size] {
			if i > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		}
	}
	w.WriteByte('\n')
}
