package chrono

import "time"

type API interface {
	Now() time.Time
	Location() *time.Location
}

// StandardImpl reports wall clock time in the portal's timezone (WITA).
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() StandardImpl {
	location, err := time.LoadLocation("Asia/Makassar")
	if err != nil {
		// no tzdata on this machine, WITA has no DST so a fixed zone is exact
		location = time.FixedZone("WITA", 8*60*60)
	}
	return StandardImpl{location: location}
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always reports the same instant, used by tests.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	return f.Time.Location()
}
