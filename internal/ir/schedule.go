package ir

import "iter"

// Schedule is one invocation unit: the root of the IR tree plus the arena
// that owns every node in it. A Schedule is built once by the front end,
// mutated in place by the analyzer and a bounded sequence of
// transformations, and handed to lowering by reference.
//
// Nodes detached during a rewrite stay in the arena but become unreachable
// from the root; no node ever outlives its Schedule.
type Schedule struct {
	// Name is the invoke name, e.g. "invoke_0".
	Name  string
	nodes []node
}

// NewSchedule creates an empty Schedule whose root is node 0.
func NewSchedule(name string) *Schedule {
	return &Schedule{
		Name:  name,
		nodes: []node{{kind: KindSchedule, parent: InvalidNode}},
	}
}

// Root returns the Schedule root node.
func (s *Schedule) Root() NodeID { return 0 }

func (s *Schedule) validID(id NodeID) bool {
	return id >= 0 && int(id) < len(s.nodes)
}

// Kind returns the kind of id, or KindSchedule for the root.
// An invalid id yields KindSchedule; callers that may hold stale IDs should
// check Reachable first.
func (s *Schedule) Kind(id NodeID) Kind {
	if !s.validID(id) {
		return KindSchedule
	}
	return s.nodes[id].kind
}

// Parent returns the parent of id, or InvalidNode for the root and for
// detached nodes.
func (s *Schedule) Parent(id NodeID) NodeID {
	if !s.validID(id) {
		return InvalidNode
	}
	return s.nodes[id].parent
}

// Children returns a copy of id's ordered child list.
func (s *Schedule) Children(id NodeID) []NodeID {
	if !s.validID(id) {
		return nil
	}
	out := make([]NodeID, len(s.nodes[id].children))
	copy(out, s.nodes[id].children)
	return out
}

// NumChildren returns the number of children of id.
func (s *Schedule) NumChildren(id NodeID) int {
	if !s.validID(id) {
		return 0
	}
	return len(s.nodes[id].children)
}

// Loop returns the Loop payload of id, or nil if id is not a Loop node.
func (s *Schedule) Loop(id NodeID) *Loop {
	if !s.validID(id) {
		return nil
	}
	return s.nodes[id].loop
}

// Call returns the Call payload of id, or nil if id is not a kernel or
// builtin call.
func (s *Schedule) Call(id NodeID) *Call {
	if !s.validID(id) {
		return nil
	}
	return s.nodes[id].call
}

// Directive returns the Directive payload of id, or nil.
func (s *Schedule) Directive(id NodeID) *Directive {
	if !s.validID(id) {
		return nil
	}
	return s.nodes[id].directive
}

// Halo returns the HaloExchange payload of id, or nil.
func (s *Schedule) Halo(id NodeID) *HaloExchange {
	if !s.validID(id) {
		return nil
	}
	return s.nodes[id].halo
}

// Reduction returns the GlobalReduction payload of id, or nil.
func (s *Schedule) Reduction(id NodeID) *GlobalReduction {
	if !s.validID(id) {
		return nil
	}
	return s.nodes[id].reduction
}

// Reachable reports whether id is currently attached to the tree rooted at
// the Schedule root.
func (s *Schedule) Reachable(id NodeID) bool {
	if !s.validID(id) {
		return false
	}
	for id != 0 {
		p := s.nodes[id].parent
		if p == InvalidNode {
			return false
		}
		id = p
	}
	return true
}

// Walk returns a lazy pre-order traversal of the subtree rooted at id,
// including id itself. The sequence is finite and restartable; ranging over
// it again starts a fresh traversal. Mutating the tree while a traversal is
// in progress invalidates it — restart after any Replace/Detach.
func (s *Schedule) Walk(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !s.validID(id) {
			return
		}
		s.walk(id, yield)
	}
}

func (s *Schedule) walk(id NodeID, yield func(NodeID) bool) bool {
	if !yield(id) {
		return false
	}
	for _, c := range s.nodes[id].children {
		if !s.walk(c, yield) {
			return false
		}
	}
	return true
}

// Ancestors returns id's ancestors, nearest first, ending at the root.
// Detached nodes yield the ancestors up to their detachment point.
func (s *Schedule) Ancestors(id NodeID) []NodeID {
	if !s.validID(id) {
		return nil
	}
	var out []NodeID
	for {
		p := s.nodes[id].parent
		if p == InvalidNode {
			return out
		}
		out = append(out, p)
		id = p
	}
}

// Ancestor returns the nearest ancestor of id with the given kind, or
// InvalidNode if there is none.
func (s *Schedule) Ancestor(id NodeID, kind Kind) NodeID {
	for _, a := range s.Ancestors(id) {
		if s.nodes[a].kind == kind {
			return a
		}
	}
	return InvalidNode
}

// Position returns id's index among its siblings. The root and detached
// nodes are at position 0.
func (s *Schedule) Position(id NodeID) int {
	p := s.Parent(id)
	if p == InvalidNode {
		return 0
	}
	for i, c := range s.nodes[p].children {
		if c == id {
			return i
		}
	}
	return 0
}

// newNode appends a detached arena slot and returns its id.
func (s *Schedule) newNode(n node) NodeID {
	n.parent = InvalidNode
	id := NodeID(len(s.nodes))
	s.nodes = append(s.nodes, n)
	return id
}

// NewLoopNode allocates a detached Loop node.
func (s *Schedule) NewLoopNode(l Loop) NodeID {
	return s.newNode(node{kind: KindLoop, loop: &l})
}

// NewKernelCallNode allocates a detached KernelCall node.
func (s *Schedule) NewKernelCallNode(c Call) NodeID {
	return s.newNode(node{kind: KindKernelCall, call: &c})
}

// NewBuiltinCallNode allocates a detached BuiltinCall node.
func (s *Schedule) NewBuiltinCallNode(c Call) NodeID {
	return s.newNode(node{kind: KindBuiltinCall, call: &c})
}

// NewDirectiveNode allocates a detached Directive node.
func (s *Schedule) NewDirectiveNode(d Directive) NodeID {
	return s.newNode(node{kind: KindDirective, directive: &d})
}

// NewHaloExchangeNode allocates a detached HaloExchange node.
func (s *Schedule) NewHaloExchangeNode(hx HaloExchange) NodeID {
	return s.newNode(node{kind: KindHaloExchange, halo: &hx})
}

// NewGlobalReductionNode allocates a detached GlobalReduction node.
func (s *Schedule) NewGlobalReductionNode(gr GlobalReduction) NodeID {
	return s.newNode(node{kind: KindGlobalReduction, reduction: &gr})
}

// AppendChild attaches the detached node child as the last child of parent.
func (s *Schedule) AppendChild(parent, child NodeID) error {
	return s.InsertChildAt(parent, s.NumChildren(parent), child)
}

// InsertChildAt attaches the detached node child at the given index in
// parent's child list. index may equal the current child count (append).
func (s *Schedule) InsertChildAt(parent NodeID, index int, child NodeID) error {
	const op = "InsertChildAt"
	if !s.validID(parent) || !s.validID(child) {
		return structErr(ErrCodeInvalidNode, op, child, "node id outside arena")
	}
	if !s.Reachable(parent) {
		return structErr(ErrCodeUnreachableNode, op, parent, "parent not attached to schedule")
	}
	if child == 0 {
		return structErr(ErrCodeRootImmutable, op, child, "cannot attach the root")
	}
	if s.nodes[child].parent != InvalidNode {
		return structErr(ErrCodeNotDetached, op, child, "child already attached")
	}
	kids := s.nodes[parent].children
	if index < 0 || index > len(kids) {
		return structErr(ErrCodeBadIndex, op, parent, "child index out of range")
	}
	kids = append(kids, InvalidNode)
	copy(kids[index+1:], kids[index:])
	kids[index] = child
	s.nodes[parent].children = kids
	s.nodes[child].parent = parent
	return nil
}

// Detach removes id from its parent's child list. The subtree below id
// stays intact but becomes unreachable from the root.
func (s *Schedule) Detach(id NodeID) error {
	const op = "Detach"
	if !s.validID(id) {
		return structErr(ErrCodeInvalidNode, op, id, "node id outside arena")
	}
	if id == 0 {
		return structErr(ErrCodeRootImmutable, op, id, "cannot detach the root")
	}
	if !s.Reachable(id) {
		return structErr(ErrCodeUnreachableNode, op, id, "node not attached to schedule")
	}
	p := s.nodes[id].parent
	kids := s.nodes[p].children
	for i, c := range kids {
		if c == id {
			s.nodes[p].children = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	s.nodes[id].parent = InvalidNode
	return nil
}

// Replace substitutes the detached subtree repl for the attached subtree
// old, atomically and preserving old's position among its siblings. old is
// left detached. Fails with StructureError if old is not reachable from the
// root or repl is not detached. Any traversal cached before the call is
// invalidated.
func (s *Schedule) Replace(old, repl NodeID) error {
	const op = "Replace"
	if !s.validID(old) || !s.validID(repl) {
		return structErr(ErrCodeInvalidNode, op, old, "node id outside arena")
	}
	if old == 0 {
		return structErr(ErrCodeRootImmutable, op, old, "cannot replace the root")
	}
	if !s.Reachable(old) {
		return structErr(ErrCodeUnreachableNode, op, old, "replacement target not attached to schedule")
	}
	if s.nodes[repl].parent != InvalidNode {
		return structErr(ErrCodeNotDetached, op, repl, "replacement subtree already attached")
	}
	p := s.nodes[old].parent
	for i, c := range s.nodes[p].children {
		if c == old {
			s.nodes[p].children[i] = repl
			break
		}
	}
	s.nodes[repl].parent = p
	s.nodes[old].parent = InvalidNode
	return nil
}

// Copy returns a deep clone of the Schedule. Node ids are preserved, so a
// transformation can validate against the copy and then commit to the
// original using the same ids.
func (s *Schedule) Copy() *Schedule {
	out := &Schedule{Name: s.Name, nodes: make([]node, len(s.nodes))}
	for i, n := range s.nodes {
		c := node{kind: n.kind, parent: n.parent}
		c.children = append([]NodeID(nil), n.children...)
		if n.loop != nil {
			l := *n.loop
			if n.loop.ColourMap != nil {
				l.ColourMap = make([][]int, len(n.loop.ColourMap))
				for j, cells := range n.loop.ColourMap {
					l.ColourMap[j] = append([]int(nil), cells...)
				}
			}
			c.loop = &l
		}
		if n.call != nil {
			cc := *n.call
			cc.Args = make([]Argument, len(n.call.Args))
			for j, a := range n.call.Args {
				if a.Stencil != nil {
					st := *a.Stencil
					a.Stencil = &st
				}
				cc.Args[j] = a
			}
			c.call = &cc
		}
		if n.directive != nil {
			d := *n.directive
			d.Private = append([]string(nil), n.directive.Private...)
			d.Reductions = append([]string(nil), n.directive.Reductions...)
			c.directive = &d
		}
		if n.halo != nil {
			h := *n.halo
			c.halo = &h
		}
		if n.reduction != nil {
			r := *n.reduction
			c.reduction = &r
		}
		out.nodes[i] = c
	}
	return out
}

// Args returns the arguments of every call in the subtree rooted at id, in
// pre-order. Directive, halo and reduction nodes contribute nothing.
func (s *Schedule) Args(id NodeID) []Argument {
	var out []Argument
	for n := range s.Walk(id) {
		if c := s.Call(n); c != nil {
			out = append(out, c.Args...)
		}
	}
	return out
}
