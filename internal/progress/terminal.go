package progress

import (
	"errors"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

var ErrNoTerminal = errors.New("output is not a terminal")

// ColumnsFunc reports the width of the terminal in cells.
type ColumnsFunc func() (int, error)

type fileDescriptor interface {
	Fd() uintptr
}

// TerminalColumns queries the terminal behind `out`. A positive integer in the
// COLUMNS environment variable takes precedence over the terminal itself.
func TerminalColumns(out io.Writer) ColumnsFunc {
	return func() (int, error) {
		if env := os.Getenv("COLUMNS"); env != "" {
			n, err := strconv.Atoi(env)
			if err == nil && n > 0 {
				return n, nil
			}
		}

		f, ok := out.(fileDescriptor)
		if !ok {
			return 0, ErrNoTerminal
		}
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			return 0, err
		}
		if width <= 0 {
			return 0, ErrNoTerminal
		}
		return width, nil
	}
}

// FixedColumns always reports `n` columns.
func FixedColumns(n int) ColumnsFunc {
	return func() (int, error) {
		return n, nil
	}
}
