// Package thread turns the flat comment list of a post into a reply forest.
//
// Build expects comments already ordered by creation time, oldest first; that
// is the order the comment store returns them in. It never sorts: siblings keep
// the order in which they appear in the input.
package thread

import (
	"kvartal/internal/models"
)

// Node wraps one comment and its direct replies.
type Node struct {
	Comment models.Comment
	Replies []*Node
}

// Build links comments to their parents and returns the root nodes.
//
// A comment becomes a root when it has no parent or when its parent is not in
// the input. The store's foreign keys rule out parent cycles, but a cycle would
// leave its members and their replies unreachable from any root. For each such
// cycle only one member, the earliest in input order, is cut loose from its
// parent and appended as a root; the rest of the cycle and every reply hanging
// off it keep their nesting. Every input comment ends up in exactly one node.
//
// Construction is iterative, so arbitrarily deep reply chains cost O(n) time
// and memory with no recursion.
func Build(comments []models.Comment) []*Node {
	roots := make([]*Node, 0)
	if len(comments) == 0 {
		return roots
	}

	nodes := make([]*Node, len(comments))
	byID := make(map[uint]*Node, len(comments))
	for i := range comments {
		n := &Node{Comment: comments[i], Replies: make([]*Node, 0)}
		nodes[i] = n
		// first occurrence wins if the input repeats an id
		if _, dup := byID[n.Comment.ID]; !dup {
			byID[n.Comment.ID] = n
		}
	}

	parents := make(map[*Node]*Node, len(comments))
	for _, n := range nodes {
		var parent *Node
		if pid := n.Comment.ParentID; pid != nil {
			parent = byID[*pid]
		}
		if parent == nil || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
		parents[n] = parent
	}

	reached := make(map[*Node]bool, len(nodes))
	mark := func(from *Node) {
		stack := []*Node{from}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reached[top] {
				continue
			}
			reached[top] = true
			stack = append(stack, top.Replies...)
		}
	}
	for _, r := range roots {
		mark(r)
	}
	if len(reached) == len(nodes) {
		return roots
	}

	// Whatever is left hangs off a cycle; climbing parents from it must loop.
	order := make(map[*Node]int, len(nodes))
	for i, n := range nodes {
		order[n] = i
	}
	for _, n := range nodes {
		if reached[n] {
			continue
		}
		head := cycleHead(n, parents, order)
		detach(parents[head], head)
		roots = append(roots, head)
		mark(head)
	}
	return roots
}

// cycleHead climbs from n until the parent chain closes and returns the loop
// member that comes first in the input.
func cycleHead(n *Node, parents map[*Node]*Node, order map[*Node]int) *Node {
	seen := make(map[*Node]bool)
	cur := n
	for !seen[cur] {
		seen[cur] = true
		cur = parents[cur]
	}
	head := cur
	for m := parents[cur]; m != cur; m = parents[m] {
		if order[m] < order[head] {
			head = m
		}
	}
	return head
}

func detach(parent, child *Node) {
	for i, r := range parent.Replies {
		if r == child {
			parent.Replies = append(parent.Replies[:i], parent.Replies[i+1:]...)
			return
		}
	}
}

// Walk visits node and all its descendants in pre-order without recursion.
// Returning false from fn skips that node's replies.
func Walk(node *Node, fn func(*Node) bool) {
	if node == nil {
		return
	}
	stack := []*Node{node}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top) {
			continue
		}
		// push in reverse so replies come out in order
		for i := len(top.Replies) - 1; i >= 0; i-- {
			stack = append(stack, top.Replies[i])
		}
	}
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	total := 0
	for _, root := range forest {
		Walk(root, func(*Node) bool {
			total++
			return true
		})
	}
	return total
}

// Find returns the node holding the comment with the given id, or nil.
func Find(forest []*Node, id uint) *Node {
	var found *Node
	for _, root := range forest {
		Walk(root, func(n *Node) bool {
			if found != nil {
				return false
			}
			if n.Comment.ID == id {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}
