package progress

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

var ErrInvalidTotal = errors.New("progress: total must be greater than zero")

const emptyGlyph = "-"

// Options configures a Bar.
type Options struct {
	// Prefix is written before the bar.
	Prefix string
	// Suffix is written after the percentage.
	Suffix string

	// Decimals is the number of fractional digits in the percentage, the zero
	// value renders whole percents. DefaultOptions sets it to 1.
	Decimals int

	// Length is the number of cells in the bar, when Autosize is set it is
	// only used as the terminal width if the real width cannot be determined.
	// Default: 100
	Length int

	// Fill is drawn for the completed part of the bar.
	// Default: "█"
	Fill string

	// Autosize stretches the bar to fill the terminal.
	Autosize bool

	// Output is where the bar is written.
	// Default: os.Stdout
	Output io.Writer

	// Columns reports the terminal width for Autosize.
	// Default: TerminalColumns(Output)
	Columns ColumnsFunc
}

// DefaultOptions is a one decimal, 100 cell bar drawn with full blocks.
func DefaultOptions() Options {
	return Options{
		Decimals: 1,
		Length:   100,
		Fill:     "█",
	}
}

type Bar struct {
	opts Options
}

// New fills in the zero valued Length, Fill, Output and Columns, start from
// DefaultOptions to also get one decimal in the percentage.
func New(opts Options) *Bar {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Length <= 0 {
		opts.Length = 100
	}
	if opts.Fill == "" {
		opts.Fill = "█"
	}
	if opts.Decimals < 0 {
		opts.Decimals = 0
	}
	if opts.Columns == nil {
		opts.Columns = TerminalColumns(opts.Output)
	}
	return &Bar{opts: opts}
}

// Percent renders 100 * iteration / total with `decimals` fractional digits.
func Percent(iteration, total, decimals int) string {
	return strconv.FormatFloat(100*(float64(iteration)/float64(total)), 'f', decimals, 64)
}

// FilledLength is the number of filled cells for a bar of `length` cells,
// iteration is clamped to [0, total] so the result is always in [0, length].
func FilledLength(length, iteration, total int) int {
	if length <= 0 || total <= 0 {
		return 0
	}
	if iteration < 0 {
		iteration = 0
	}
	if iteration > total {
		iteration = total
	}
	// the product is kept in 128 bits, iteration <= total keeps the high
	// word below total
	hi, lo := bits.Mul64(uint64(length), uint64(iteration))
	filled, _ := bits.Div64(hi, lo, uint64(total))
	return int(filled)
}

func (b *Bar) autosize(percent string) int {
	columns, err := b.opts.Columns()
	if err != nil || columns <= 0 {
		columns = b.opts.Length
	}

	rest := runewidth.StringWidth(fmt.Sprintf("%s || %s%% %s", b.opts.Prefix, percent, b.opts.Suffix))
	fillWidth := runewidth.StringWidth(b.opts.Fill)
	if fillWidth < 1 {
		fillWidth = 1
	}

	// one cell is left free so the cursor never wraps to the next line
	length := (columns - rest - 1) / fillWidth
	if length < 0 {
		return 0
	}
	return length
}

// Length returns the bar length that would be used to render a line for the given state.
func (b *Bar) Length(iteration, total int) (int, error) {
	if total <= 0 {
		return 0, ErrInvalidTotal
	}
	if !b.opts.Autosize {
		return b.opts.Length, nil
	}
	return b.autosize(Percent(iteration, total, b.opts.Decimals)), nil
}

// Format renders the line for the given state without any cursor control.
func (b *Bar) Format(iteration, total int) (string, error) {
	if total <= 0 {
		return "", ErrInvalidTotal
	}

	percent := Percent(iteration, total, b.opts.Decimals)
	length := b.opts.Length
	if b.opts.Autosize {
		length = b.autosize(percent)
	}

	filled := FilledLength(length, iteration, total)
	bar := strings.Repeat(b.opts.Fill, filled) + strings.Repeat(emptyGlyph, length-filled)

	return fmt.Sprintf("%s |%s| %s%% %s", b.opts.Prefix, bar, percent, b.opts.Suffix), nil
}

// Print overwrites the current terminal line with the bar and moves to a new
// line once iteration == total.
func (b *Bar) Print(iteration, total int) error {
	line, err := b.Format(iteration, total)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(b.opts.Output, "\r%s\r", line)
	if err != nil {
		return err
	}
	if iteration == total {
		_, err = fmt.Fprintln(b.opts.Output)
	}
	return err
}
