package progress

// Tracker drives a Bar through a fixed number of steps.
type Tracker struct {
	bar     *Bar
	total   int
	current int
}

// NewTracker prints the initial 0% line right away.
func NewTracker(bar *Bar, total int) (*Tracker, error) {
	t := &Tracker{bar: bar, total: total}
	err := bar.Print(0, total)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Step advances the tracker by one, steps past the total are ignored.
func (t *Tracker) Step() error {
	if t.current >= t.total {
		return nil
	}
	t.current++
	return t.bar.Print(t.current, t.total)
}

// Set jumps to `current` and redraws.
func (t *Tracker) Set(current int) error {
	if current > t.total {
		current = t.total
	}
	t.current = current
	return t.bar.Print(t.current, t.total)
}

func (t *Tracker) Done() bool {
	return t.current >= t.total
}
