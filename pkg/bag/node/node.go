package node

// Node holds one value and the link to the rest of its chain.
type Node struct {
	Data int
	Link *Node
}

// New creates a node in front of link
func New(data int, link *Node) *Node {
	return &Node{Data: data, Link: link}
}

// ListCopy returns an independent copy of the chain starting at head.
func ListCopy(head *Node) *Node {
	copyHead, _ := ListCopyWithTail(head)
	return copyHead
}

// ListCopyWithTail copies the chain starting at head and also returns the last
// copied node. Callers check for an empty chain first; a nil head yields nil, nil.
func ListCopyWithTail(head *Node) (copyHead, copyTail *Node) {
	if head == nil {
		return nil, nil
	}

	copyHead = New(head.Data, nil)
	copyTail = copyHead

	for cursor := head.Link; cursor != nil; cursor = cursor.Link {
		copyTail.Link = New(cursor.Data, nil)
		copyTail = copyTail.Link
	}

	return copyHead, copyTail
}

// ListSearch returns the first node at or after head whose Data equals target,
// or nil when there is none.
func ListSearch(head *Node, target int) *Node {
	for cursor := head; cursor != nil; cursor = cursor.Link {
		if cursor.Data == target {
			return cursor
		}
	}
	return nil
}

// ListPosition returns the node at the 1-based position counted from head.
// Position must be in [1, ListLength(head)]; outside that range the result is nil.
func ListPosition(head *Node, position int) *Node {
	if position < 1 {
		return nil
	}

	cursor := head
	for i := 1; i < position && cursor != nil; i++ {
		cursor = cursor.Link
	}
	return cursor
}

// ListLength counts the nodes reachable from head
func ListLength(head *Node) int {
	n := 0
	for cursor := head; cursor != nil; cursor = cursor.Link {
		n++
	}
	return n
}
