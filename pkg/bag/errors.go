package bag

import "errors"

var (
	// ErrNilBag is returned when a nil *Bag is passed where a bag is required.
	ErrNilBag = errors.New("bag: nil bag")
	// ErrEmptyBag is returned by Grab on a bag with no elements.
	ErrEmptyBag = errors.New("bag: size is zero")
)
