// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package entity

import (
	"sync"
	"sync/atomic"

	"github.com/luxfi/dds/qos"
	"github.com/luxfi/dds/retcode"
)

// Handle is a process-unique positive integer identifying a live
// entity; negative values are reserved for error codes (spec.md §3).
type Handle int32

var handleCounter int64

func nextHandle() Handle {
	return Handle(atomic.AddInt64(&handleCounter, 1))
}

// Entity is one node of the typed tree (spec.md §3/§4.3).
type Entity struct {
	mu sync.RWMutex

	handle   Handle
	kind     Kind
	domainID int32
	parent   *Entity
	children []*Entity

	qos     qos.QoS
	enabled bool

	listener     Listener
	listenerMask StatusMask

	status statusSet

	name string

	coherentDepth int

	// topic is the topic a reader/writer was created from (spec.md:
	// "get_topic returns the topic used to create the reader/writer").
	topic *Entity
}

// Topic returns the topic this reader/writer was created from, if any.
func (e *Entity) Topic() *Entity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.topic
}

// SetTopic associates e with the topic it was created from.
func (e *Entity) SetTopic(t *Entity) {
	e.mu.Lock()
	e.topic = t
	e.mu.Unlock()
}

// Registry is a handle→entity lookup table (each Domain owns one),
// matching the original's "entities are looked up by integer handle"
// contract. Handle values come from one process-wide counter.
type Registry struct {
	mu      sync.RWMutex
	entries map[Handle]*Entity
}

func NewRegistry() *Registry { return &Registry{entries: make(map[Handle]*Entity)} }

func (r *Registry) register(e *Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.handle] = e
}

func (r *Registry) unregister(e *Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, e.handle)
}

// Lookup resolves a handle to its live entity, if any.
func (r *Registry) Lookup(h Handle) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[h]
	return e, ok
}

// NewEntity creates a new entity of kind under parent (nil only for
// the library root); autoenable sets its initial enabled state, which
// callers derive from the parent's state or ENTITY_FACTORY policy.
func (r *Registry) NewEntity(kind Kind, parent *Entity, domainID int32, q qos.QoS, autoenable bool) *Entity {
	e := &Entity{
		handle:   nextHandle(),
		kind:     kind,
		domainID: domainID,
		parent:   parent,
		qos:      q,
		enabled:  autoenable,
	}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, e)
		parent.mu.Unlock()
	}
	r.register(e)
	return e
}

func (e *Entity) Handle() Handle   { return e.handle }
func (e *Entity) Kind() Kind       { return e.kind }
func (e *Entity) DomainID() int32 { return e.domainID }

// Parent returns the entity's direct parent (the implicit
// subscriber/publisher for a reader/writer, not the participant).
func (e *Entity) Parent() *Entity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parent
}

// Children returns the entity's children in creation order.
func (e *Entity) Children() []*Entity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Entity(nil), e.children...)
}

// GetParticipant climbs the tree to the owning participant.
func (e *Entity) GetParticipant() *Entity {
	cur := e
	for cur != nil && cur.kind != KindParticipant {
		cur = cur.Parent()
	}
	return cur
}

// nearestOfKind climbs the tree looking for the nearest ancestor
// (including self) of kind k; used by get_subscriber/get_publisher.
func (e *Entity) nearestOfKind(k Kind) *Entity {
	cur := e
	for cur != nil {
		if cur.kind == k {
			return cur
		}
		cur = cur.Parent()
	}
	return nil
}

func (e *Entity) GetSubscriber() *Entity { return e.nearestOfKind(KindSubscriber) }
func (e *Entity) GetPublisher() *Entity  { return e.nearestOfKind(KindPublisher) }

// QoS returns a copy of the entity's frozen QoS set.
func (e *Entity) QoS() qos.QoS {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.qos
}

// SetQoS applies a new QoS set, rejecting changes to immutable
// policies once the entity is enabled (spec.md §4.2 "Changeability").
func (e *Entity) SetQoS(newQoS qos.QoS) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enabled {
		changed := qos.Delta(&e.qos, &newQoS, ^qos.PolicyID(0))
		if err := qos.CheckImmutable(changed); err != nil {
			return err
		}
	}
	e.qos = newQoS
	return nil
}

// Enable transitions a disabled entity to enabled. Enabling is
// monotonic: re-enabling an already-enabled entity is a no-op success.
func (e *Entity) Enable() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = true
	return nil
}

func (e *Entity) Enabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled
}

// RequireEnabled returns NOT_ENABLED unless the entity is enabled, the
// standard guard most operations apply first (spec.md §3 "Lifecycle").
func (e *Entity) RequireEnabled() error {
	if !e.Enabled() {
		return retcode.ErrNotEnabled
	}
	return nil
}

// Delete removes the entity and its entire subtree, depth-first, and
// unregisters every handle (spec.md §3 "deleting an entity deletes its
// entire subtree depth-first").
func (r *Registry) Delete(e *Entity) error {
	e.mu.RLock()
	children := append([]*Entity(nil), e.children...)
	parent := e.parent
	e.mu.RUnlock()

	for _, c := range children {
		if err := r.Delete(c); err != nil {
			return err
		}
	}
	if parent != nil {
		parent.mu.Lock()
		for i, c := range parent.children {
			if c == e {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
		parent.mu.Unlock()
	}
	r.unregister(e)
	return nil
}

// Name returns the entity's per-entity display name (spec.md's
// "Entity naming"), which may be empty.
func (e *Entity) Name() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.name
}

func (e *Entity) SetName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = name
}

// BeginCoherentAccess opens an ordered group on a publisher/subscriber
// (spec.md's "Subscriber coherent access").
func (e *Entity) BeginCoherentAccess() error {
	if e.kind != KindPublisher && e.kind != KindSubscriber {
		return retcode.ErrIllegalOperation
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.coherentDepth++
	return nil
}

// EndCoherentAccess closes the innermost open coherent group.
func (e *Entity) EndCoherentAccess() error {
	if e.kind != KindPublisher && e.kind != KindSubscriber {
		return retcode.ErrIllegalOperation
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.coherentDepth == 0 {
		return retcode.ErrPreconditionNotMet
	}
	e.coherentDepth--
	return nil
}

// InCoherentAccess reports whether a coherent group is currently open.
func (e *Entity) InCoherentAccess() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.coherentDepth > 0
}

// NotifyReaders re-raises DataAvailable for every reader child that
// currently has unread data (spec.md's "notify_readers").
func (e *Entity) NotifyReaders() error {
	if e.kind != KindSubscriber {
		return retcode.ErrIllegalOperation
	}
	for _, r := range e.Children() {
		if r.kind == KindReader && r.ReadStatus(DataAvailable) != 0 {
			r.raiseAndNotify(DataAvailable)
		}
	}
	return nil
}
