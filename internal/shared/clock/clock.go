package clock

import "time"

// Clock is the time source used wherever a timestamp ends up in a record.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Tests use it for golden timestamps.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
