// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package entity

// Listener is the per-entity callback table (spec.md §4.3, "Listener
// propagation"). Every method is optional: a nil Listener, or a
// Listener whose relevant field is left as the zero value, means "no
// callback registered here — walk up the parent chain".
type Listener struct {
	OnInconsistentTopic       func(*Entity, InconsistentTopicStatus)
	OnOfferedDeadlineMissed   func(*Entity, OfferedDeadlineMissedStatus)
	OnRequestedDeadlineMissed func(*Entity, RequestedDeadlineMissedStatus)
	OnOfferedIncompatibleQoS  func(*Entity, OfferedIncompatibleQoSStatus)
	OnRequestedIncompatibleQoS func(*Entity, RequestedIncompatibleQoSStatus)
	OnSampleLost              func(*Entity, SampleLostStatus)
	OnSampleRejected          func(*Entity, SampleRejectedStatus)
	OnDataOnReaders           func(*Entity)
	OnDataAvailable           func(*Entity)
	OnLivelinessLost          func(*Entity, LivelinessLostStatus)
	OnLivelinessChanged       func(*Entity, LivelinessChangedStatus)
	OnPublicationMatched      func(*Entity, PublicationMatchedStatus)
	OnSubscriptionMatched     func(*Entity, SubscriptionMatchedStatus)

	// ResetOnInvoke, if true, means an invoked callback clears the
	// entity's trigger for that status (spec.md: "A callback that is
	// invoked *may* reset the status trigger, configurable per-callback").
	ResetOnInvoke bool
}

// SetListener installs l, active for the statuses set in mask.
func (e *Entity) SetListener(l Listener, mask StatusMask) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
	e.listenerMask = mask
}

// raiseAndNotify raises bit in the entity's status-changes mask, then
// dispatches to the most-specific registered listener for that status,
// walking up the parent chain — stopping at the participant — when a
// slot is unset (spec.md's listener-propagation rule).
//
// data_on_readers pre-emption: when bit is DataAvailable and the
// entity is a reader whose subscriber has a registered
// OnDataOnReaders callback, the subscriber handles it instead and the
// reader's own DataAvailable callback is suppressed.
func (e *Entity) raiseAndNotify(bit StatusMask) {
	e.mu.Lock()
	e.status.raise(bit)
	e.mu.Unlock()

	if bit == DataAvailable && e.kind == KindReader {
		if sub := e.GetSubscriber(); sub != nil {
			if handled := sub.tryOnDataOnReaders(); handled {
				return
			}
		}
	}

	cur := e
	for cur != nil {
		if cur.dispatch(e, bit) {
			return
		}
		if cur.kind == KindParticipant {
			return
		}
		cur = cur.Parent()
	}
}

// tryOnDataOnReaders invokes this subscriber's OnDataOnReaders
// callback if registered, returning whether it pre-empted delivery.
func (e *Entity) tryOnDataOnReaders() bool {
	e.mu.RLock()
	l := e.listener
	mask := e.listenerMask
	e.mu.RUnlock()
	if mask.Has(DataOnReaders) && l.OnDataOnReaders != nil {
		e.mu.Lock()
		e.status.raise(DataOnReaders)
		if l.ResetOnInvoke {
			e.status.changes &^= DataOnReaders
		}
		e.mu.Unlock()
		l.OnDataOnReaders(e)
		return true
	}
	return false
}

// dispatch invokes this entity's callback for bit against source, if
// registered, returning whether it fired.
func (e *Entity) dispatch(source *Entity, bit StatusMask) bool {
	e.mu.RLock()
	l := e.listener
	mask := e.listenerMask
	e.mu.RUnlock()
	if !mask.Has(bit) {
		return false
	}

	invoked := true
	switch bit {
	case InconsistentTopic:
		if l.OnInconsistentTopic != nil {
			l.OnInconsistentTopic(source, source.status.inconsistentTopic)
		} else {
			invoked = false
		}
	case OfferedDeadlineMissed:
		if l.OnOfferedDeadlineMissed != nil {
			l.OnOfferedDeadlineMissed(source, source.status.offeredDeadlineMissed)
		} else {
			invoked = false
		}
	case RequestedDeadlineMissed:
		if l.OnRequestedDeadlineMissed != nil {
			l.OnRequestedDeadlineMissed(source, source.status.requestedDeadlineMissed)
		} else {
			invoked = false
		}
	case OfferedIncompatibleQoS:
		if l.OnOfferedIncompatibleQoS != nil {
			l.OnOfferedIncompatibleQoS(source, source.status.offeredIncompatibleQoS)
		} else {
			invoked = false
		}
	case RequestedIncompatibleQoS:
		if l.OnRequestedIncompatibleQoS != nil {
			l.OnRequestedIncompatibleQoS(source, source.status.requestedIncompatibleQoS)
		} else {
			invoked = false
		}
	case SampleLost:
		if l.OnSampleLost != nil {
			l.OnSampleLost(source, source.status.sampleLost)
		} else {
			invoked = false
		}
	case SampleRejected:
		if l.OnSampleRejected != nil {
			l.OnSampleRejected(source, source.status.sampleRejected)
		} else {
			invoked = false
		}
	case DataAvailable:
		if l.OnDataAvailable != nil {
			l.OnDataAvailable(source)
		} else {
			invoked = false
		}
	case LivelinessLost:
		if l.OnLivelinessLost != nil {
			l.OnLivelinessLost(source, source.status.livelinessLost)
		} else {
			invoked = false
		}
	case LivelinessChanged:
		if l.OnLivelinessChanged != nil {
			l.OnLivelinessChanged(source, source.status.livelinessChanged)
		} else {
			invoked = false
		}
	case PublicationMatched:
		if l.OnPublicationMatched != nil {
			l.OnPublicationMatched(source, source.status.publicationMatched)
		} else {
			invoked = false
		}
	case SubscriptionMatched:
		if l.OnSubscriptionMatched != nil {
			l.OnSubscriptionMatched(source, source.status.subscriptionMatched)
		} else {
			invoked = false
		}
	default:
		invoked = false
	}
	if invoked && l.ResetOnInvoke {
		source.mu.Lock()
		source.status.changes &^= bit
		source.mu.Unlock()
	}
	return invoked
}

// ReadStatus samples the entity's pending status-changes mask
// restricted to interest, without clearing it.
func (e *Entity) ReadStatus(interest StatusMask) StatusMask {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status.readStatus(interest)
}

// TakeStatus samples and clears.
func (e *Entity) TakeStatus(interest StatusMask) StatusMask {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status.takeStatus(interest)
}

// GetPublicationMatchedStatus retrieves the structure and resets its
// change counters, per spec.md's get_<status>_status contract.
func (e *Entity) GetPublicationMatchedStatus() PublicationMatchedStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.status.publicationMatched
	e.status.publicationMatched.TotalCountChange = 0
	e.status.publicationMatched.CurrentCountChange = 0
	e.status.changes &^= PublicationMatched
	return st
}

// GetSubscriptionMatchedStatus is the reader-side dual.
func (e *Entity) GetSubscriptionMatchedStatus() SubscriptionMatchedStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.status.subscriptionMatched
	e.status.subscriptionMatched.TotalCountChange = 0
	e.status.subscriptionMatched.CurrentCountChange = 0
	e.status.changes &^= SubscriptionMatched
	return st
}

// RaisePublicationMatched updates a writer's match counters and
// notifies listeners/waitsets.
func (e *Entity) RaisePublicationMatched(matchedHandle Handle, delta int32) {
	e.mu.Lock()
	s := &e.status.publicationMatched
	if delta > 0 {
		s.TotalCount++
		s.TotalCountChange++
	}
	s.CurrentCount += delta
	s.CurrentCountChange += delta
	s.LastSubscriptionHandle = uint64(matchedHandle)
	e.mu.Unlock()
	e.raiseAndNotify(PublicationMatched)
}

// RaiseSubscriptionMatched is the reader-side dual.
func (e *Entity) RaiseSubscriptionMatched(matchedHandle Handle, delta int32) {
	e.mu.Lock()
	s := &e.status.subscriptionMatched
	if delta > 0 {
		s.TotalCount++
		s.TotalCountChange++
	}
	s.CurrentCount += delta
	s.CurrentCountChange += delta
	s.LastPublicationHandle = uint64(matchedHandle)
	e.mu.Unlock()
	e.raiseAndNotify(SubscriptionMatched)
}

// RaiseDataAvailable marks a reader as having new data and notifies.
func (e *Entity) RaiseDataAvailable() { e.raiseAndNotify(DataAvailable) }

// RaiseOfferedIncompatibleQoS records a writer matched against an
// incompatible reader, with policy as the single "worst" failing
// policy id (spec.md: "updates both endpoints' *_INCOMPATIBLE_QOS
// status, including the single 'worst' policy id").
func (e *Entity) RaiseOfferedIncompatibleQoS(policy uint64) {
	e.mu.Lock()
	s := &e.status.offeredIncompatibleQoS
	s.TotalCount++
	s.TotalCountChange++
	s.LastPolicyID = policy
	e.mu.Unlock()
	e.raiseAndNotify(OfferedIncompatibleQoS)
}

// RaiseRequestedIncompatibleQoS is the reader-side dual.
func (e *Entity) RaiseRequestedIncompatibleQoS(policy uint64) {
	e.mu.Lock()
	s := &e.status.requestedIncompatibleQoS
	s.TotalCount++
	s.TotalCountChange++
	s.LastPolicyID = policy
	e.mu.Unlock()
	e.raiseAndNotify(RequestedIncompatibleQoS)
}

// RaiseSampleRejected records a rejected sample and notifies.
func (e *Entity) RaiseSampleRejected(reason SampleRejectedKind, instance uint64) {
	e.mu.Lock()
	s := &e.status.sampleRejected
	s.TotalCount++
	s.TotalCountChange++
	s.LastReason = reason
	s.LastInstanceHandle = instance
	e.mu.Unlock()
	e.raiseAndNotify(SampleRejected)
}
