package bag

import (
	"iter"
	"strconv"
	"strings"

	"github.com/ib-77/intbag/pkg/bag/node"
)

// Bag is a multiset of ints.
//
// Invariant: count equals the number of nodes reachable from head.
// The zero value is an empty bag; its random source is picked on the first Grab.
type Bag struct {
	head  *node.Node
	count int
	rng   Source
}

// New creates an empty bag
func New(opts ...Option) *Bag {
	o := applyOptions(opts)
	return &Bag{rng: o.rng}
}

// Add puts value into the bag.
func (b *Bag) Add(value int) {
	b.head = node.New(value, b.head)
	b.count++
}

// AddAll adds a copy of every element of other to b. other is left untouched,
// and adding a bag to itself doubles it.
func (b *Bag) AddAll(other *Bag) error {
	if other == nil {
		return ErrNilBag
	}

	if other.count > 0 {
		copyHead, copyTail := node.ListCopyWithTail(other.head)
		copyTail.Link = b.head
		b.head = copyHead
		b.count += other.count
	}
	return nil
}

// Clone returns an independent copy of b. The copy shares b's random source.
func (b *Bag) Clone() *Bag {
	return &Bag{
		head:  node.ListCopy(b.head),
		count: b.count,
		rng:   b.rng,
	}
}

// CountOccurrences returns how many times target is in the bag.
func (b *Bag) CountOccurrences(target int) int {
	answer := 0

	cursor := node.ListSearch(b.head, target)
	for cursor != nil {
		answer++
		cursor = node.ListSearch(cursor.Link, target)
	}
	return answer
}

// Grab returns a uniformly chosen element without removing it.
func (b *Bag) Grab() (int, error) {
	if b.count == 0 {
		return 0, ErrEmptyBag
	}

	if b.rng == nil {
		b.rng = NewSeededRand(0)
	}

	i := b.rng.Intn(b.count) + 1
	return node.ListPosition(b.head, i).Data, nil
}

// Remove takes one copy of target out of the bag and reports whether it was there.
//
// The head value is moved into target's node and the head node is dropped, so
// the order of the remaining elements changes.
func (b *Bag) Remove(target int) bool {
	targetNode := node.ListSearch(b.head, target)
	if targetNode == nil {
		return false
	}

	targetNode.Data = b.head.Data
	b.head = b.head.Link
	b.count--
	return true
}

// Size returns the number of elements
func (b *Bag) Size() int {
	return b.count
}

// Values yields the elements in chain order. The order carries no meaning and
// changes after Remove.
func (b *Bag) Values() iter.Seq[int] {
	return func(yield func(int) bool) {
		for cursor := b.head; cursor != nil; cursor = cursor.Link {
			if !yield(cursor.Data) {
				return
			}
		}
	}
}

func (b *Bag) String() string {
	var sb strings.Builder
	sb.WriteString("bag[")
	first := true
	for v := range b.Values() {
		if !first {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(v))
		first = false
	}
	sb.WriteByte(']')
	return sb.String()
}

// Union returns a new bag holding the elements of both b1 and b2. Neither
// argument is modified.
func Union(b1, b2 *Bag, opts ...Option) (*Bag, error) {
	if b1 == nil || b2 == nil {
		return nil, ErrNilBag
	}

	answer := New(opts...)
	if err := answer.AddAll(b1); err != nil {
		return nil, err
	}
	if err := answer.AddAll(b2); err != nil {
		return nil, err
	}
	return answer, nil
}
