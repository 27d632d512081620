// Package gif renders training progress as an animated gif.
package gif

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/gorgonia/cellnet/train"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `validation 0.000000 (best 0.000000)`
	textLines       = 4
	plotH           = 120
	finalDelay      = 300
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

const (
	bgIdx = iota
	fgIdx
	trainIdx
	validIdx
)

var globPalette = color.Palette{
	color.Gray{253},
	color.Gray{0},
	color.RGBA{0x1f, 0x77, 0xb4, 0xff},
	color.RGBA{0xd6, 0x27, 0x28, 0xff},
}

// Encoder draws one frame per epoch: the trainer's state as text and the error curves so far.
// It implements train.Listener.
type Encoder struct {
	H, W int
	font.Drawer

	out *gif.GIF
	io.Writer

	maxH, maxW int // maxHeight and maxWidth
	padH, padW int // padding so everything don't start at the topleft
	dy         int

	train, valid []float64
	best         float64
	initialized  bool
}

var _ train.Listener = (*Encoder)(nil)

// NewEncoder creates an encoder that writes into w on Flush. Frames are at most maxH by maxW pixels.
func NewEncoder(w io.Writer, maxH, maxW int) *Encoder {
	return &Encoder{
		H:    -1,
		W:    -1,
		maxH: maxH,
		maxW: maxW,
		padH: 10,
		padW: 10,

		Drawer: font.Drawer{
			Src: image.NewUniform(globPalette[fgIdx]),
		},
		out:    &gif.GIF{LoopCount: -1},
		Writer: w,
		best:   math.Inf(1),
	}
}

func (enc *Encoder) init() {
	enc.Drawer.Face = truetype.NewFace(regular, &truetype.Options{
		Size:    fontsize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	enc.dy = int(math.Ceil(fontsize * lineheight * dpi / 72))
	w := font.MeasureString(enc.Face, dummyLongString).Ceil() + 2*enc.padW
	h := textLines*enc.dy + plotH + 2*enc.padH

	w = minInt(w, enc.maxW)
	h = minInt(h, enc.maxH)
	if w == enc.maxW {
		enc.padW = 0
	}
	if h == enc.maxH {
		enc.padH = 0
	}
	enc.H, enc.W = h, w
	enc.initialized = true
}

// Encode renders the progress of an epoch.
func (enc *Encoder) Encode(p train.Progress) error {
	if !enc.initialized {
		enc.init()
	}
	enc.train = append(enc.train, p.TrainError)
	enc.valid = append(enc.valid, p.ValidationError)
	if p.ValidationError < enc.best {
		enc.best = p.ValidationError
	}

	im := image.NewPaletted(image.Rect(0, 0, enc.W, enc.H), globPalette)
	draw.Draw(im, im.Bounds(), image.NewUniform(globPalette[bgIdx]), image.Point{}, draw.Src)
	enc.Dst = im

	y := enc.padH + enc.dy
	for _, s := range []string{
		p.Trainer,
		fmt.Sprintf("epoch %d/%d", p.Epoch+1, p.Epochs),
		fmt.Sprintf("train      %.6f", p.TrainError),
		fmt.Sprintf("validation %.6f (best %.6f)", p.ValidationError, enc.best),
	} {
		enc.Dot = fixed.P(enc.padW, y)
		enc.DrawString(s)
		y += enc.dy
	}
	enc.plot(im, image.Rect(enc.padW, y, enc.W-enc.padW, enc.H-enc.padH))

	var delay int
	if p.Epoch == p.Epochs-1 {
		delay = finalDelay
	}
	enc.out.Image = append(enc.out.Image, im)
	enc.out.Delay = append(enc.out.Delay, delay)
	return nil
}

// plot draws both error curves into r, scaled to the largest error seen.
func (enc *Encoder) plot(im *image.Paletted, r image.Rectangle) {
	if r.Dx() < 2 || r.Dy() < 2 {
		return
	}
	var max float64
	for i := range enc.train {
		max = math.Max(max, math.Max(enc.train[i], enc.valid[i]))
	}
	if max == 0 || math.IsInf(max, 0) || math.IsNaN(max) {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		im.SetColorIndex(x, r.Max.Y-1, fgIdx)
	}
	n := len(enc.train)
	for x := r.Min.X; x < r.Max.X; x++ {
		i := (x - r.Min.X) * n / r.Dx()
		enc.dot(im, r, enc.valid[i]/max, x, validIdx)
		enc.dot(im, r, enc.train[i]/max, x, trainIdx)
	}
}

func (enc *Encoder) dot(im *image.Paletted, r image.Rectangle, v float64, x int, idx uint8) {
	if math.IsNaN(v) {
		return
	}
	y := r.Max.Y - 2 - int(v*float64(r.Dy()-2))
	if y < r.Min.Y {
		y = r.Min.Y
	}
	im.SetColorIndex(x, y, idx)
}

// Flush writes the gif into the writer.
func (enc *Encoder) Flush() error {
	if len(enc.out.Image) == 0 {
		return nil
	}
	return errors.WithStack(gif.EncodeAll(enc.Writer, enc.out))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
