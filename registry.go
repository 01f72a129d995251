// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

// nodeType tags registry entries so descriptors of one object kind are
// never resolved against another.
type nodeType uint32

// typeMQ tags message queue nodes.
const typeMQ nodeType = 0x4d515551

// node is the named, refcounted anchor by which openers reach a queue.
// refs counts live descriptors (plus the creator's hold while an Open is
// in flight); the link under the name is tracked separately. The object
// is destroyed by whichever operation drops the last reference after the
// name is unlinked.
type node struct {
	name     string
	typ      nodeType
	refs     int
	partial  bool
	unlinked bool
	err      error
	done     chan struct{} // closed by nodeAddFinished
	owner    *queue
}

// nodeGet resolves name for an opener. It returns (nil, nil) when the
// caller must create the object, parking on any in-flight creation of
// the same name first. On success the node's refcount is incremented on
// the caller's behalf. Called with ns.mu held; may release it while
// waiting.
func (ns *Namespace) nodeGet(name string, typ nodeType, flags OpenFlag) (*node, error) {
	for {
		n := ns.nodes[name]
		if n == nil {
			if flags&Create == 0 {
				return nil, ErrNotFound
			}
			return nil, nil
		}
		if n.typ != typ {
			return nil, ErrNotFound
		}
		if !n.partial {
			if flags&(Create|Exclusive) == Create|Exclusive {
				return nil, ErrExist
			}
			n.refs++
			return n, nil
		}
		// Another opener is mid-creation. Park until it publishes or
		// withdraws the node, then look again.
		done := n.done
		ns.mu.Unlock()
		<-done
		ns.mu.Lock()
		if n.err != nil {
			return nil, n.err
		}
	}
}

// nodeAddStart installs a partial node under name so concurrent openers
// queue up behind it while the creator initializes the object with the
// namespace lock released. Called with ns.mu held.
func (ns *Namespace) nodeAddStart(n *node, name string, typ nodeType) error {
	if name == "" {
		return ErrInvalid
	}
	n.name = name
	n.typ = typ
	n.refs = 1
	n.partial = true
	n.done = make(chan struct{})
	ns.nodes[name] = n
	return nil
}

// nodeAddFinished publishes the node, or withdraws it when init failed.
// Parked openers resume and observe err verbatim. Called with ns.mu
// held.
func (ns *Namespace) nodeAddFinished(n *node, err error) {
	n.partial = false
	n.err = err
	if err != nil {
		delete(ns.nodes, n.name)
		n.unlinked = true
		n.refs = 0
	}
	close(n.done)
}

// nodeRemove unlinks name from the registry and returns its node.
// Called with ns.mu held.
func (ns *Namespace) nodeRemove(name string, typ nodeType) (*node, error) {
	n := ns.nodes[name]
	if n == nil || n.typ != typ || n.partial {
		return nil, ErrNotFound
	}
	delete(ns.nodes, name)
	n.unlinked = true
	return n, nil
}

// nodePut drops one reference. Called with ns.mu held.
func (ns *Namespace) nodePut(n *node) {
	n.refs--
}

// nodeRemoved reports whether the node is both unlinked and unreferenced,
// i.e. its object must now be destroyed.
func (n *node) nodeRemoved() bool {
	return n.unlinked && n.refs <= 0
}
