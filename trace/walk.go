package trace

import "github.com/gammazero/deque"

// DescendantsBFS returns every strict descendant of parent, visited in
// breadth-first order via an explicit worklist rather than the
// depth-first order Frames is stored in. The inspectors' prune pass
// uses this instead of Descendants to walk the whole subtree of a newly
// classified frame.
func (insp *Inspection) DescendantsBFS(parent TraceAddress) []*Frame {
	children := insp.childrenIndex()

	var out []*Frame
	var worklist deque.Deque[TraceAddress]
	worklist.PushBack(parent)

	for worklist.Len() > 0 {
		cur := worklist.PopFront()
		for _, childIdx := range children[cur.String()] {
			child := insp.Frames[childIdx]
			out = append(out, child)
			worklist.PushBack(child.TraceAddress)
		}
	}
	return out
}

// childrenIndex lazily builds and caches a parent TraceAddress -> child
// Frame indices adjacency, so repeated BFS/DFS walks over the same
// Inspection don't each re-scan the full Frames slice.
func (insp *Inspection) childrenIndex() map[string][]int {
	if insp.children != nil {
		return insp.children
	}
	idx := make(map[string][]int, len(insp.Frames))
	for i, f := range insp.Frames {
		parent, ok := f.TraceAddress.Parent()
		if !ok {
			continue
		}
		key := parent.String()
		idx[key] = append(idx[key], i)
	}
	insp.children = idx
	return idx
}
