package clock

import "time"

type Clock interface {
	Now() time.Time
	Today() time.Time
}

// DateOf drops the time of day and returns midnight UTC of t's calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type systemClock struct {
	loc *time.Location
}

func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c systemClock) Today() time.Time {
	return DateOf(c.Now())
}

// Fixed always reports the same instant. Advance moves it forward.
type Fixed struct {
	T time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t}
}

func (f *Fixed) Now() time.Time {
	return f.T
}

func (f *Fixed) Today() time.Time {
	return DateOf(f.T)
}

func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
