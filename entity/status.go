// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package entity

// StatusMask is a bitset over the thirteen status conditions
// (spec.md §4.3, "Status model").
type StatusMask uint32

const (
	InconsistentTopic StatusMask = 1 << iota
	OfferedDeadlineMissed
	RequestedDeadlineMissed
	OfferedIncompatibleQoS
	RequestedIncompatibleQoS
	SampleLost
	SampleRejected
	DataOnReaders
	DataAvailable
	LivelinessLost
	LivelinessChanged
	PublicationMatched
	SubscriptionMatched
)

func (m StatusMask) Has(s StatusMask) bool { return m&s != 0 }

// InconsistentTopicStatus reports a topic created with an inconsistent type/QoS.
type InconsistentTopicStatus struct {
	TotalCount       int32
	TotalCountChange int32
}

// OfferedDeadlineMissedStatus reports a writer missing its deadline.
type OfferedDeadlineMissedStatus struct {
	TotalCount       int32
	TotalCountChange int32
	LastInstanceHandle uint64
}

// RequestedDeadlineMissedStatus reports a reader not receiving data within its deadline.
type RequestedDeadlineMissedStatus struct {
	TotalCount         int32
	TotalCountChange   int32
	LastInstanceHandle uint64
}

// OfferedIncompatibleQoSStatus reports a writer matched against an incompatible reader.
type OfferedIncompatibleQoSStatus struct {
	TotalCount       int32
	TotalCountChange int32
	LastPolicyID     uint64
}

// RequestedIncompatibleQoSStatus is the reader-side dual.
type RequestedIncompatibleQoSStatus struct {
	TotalCount       int32
	TotalCountChange int32
	LastPolicyID     uint64
}

// SampleLostStatus reports samples that will never be received.
type SampleLostStatus struct {
	TotalCount       int32
	TotalCountChange int32
}

// SampleRejectedKind classifies why a sample was rejected.
type SampleRejectedKind int

const (
	RejectedByInstancesLimit SampleRejectedKind = iota
	RejectedBySamplesLimit
	RejectedBySamplesPerInstanceLimit
)

// SampleRejectedStatus reports a sample the reader could not accept.
type SampleRejectedStatus struct {
	TotalCount         int32
	TotalCountChange   int32
	LastReason         SampleRejectedKind
	LastInstanceHandle uint64
}

// DataOnReadersStatus / DataAvailableStatus carry no extra fields;
// their presence in the status-changes mask is the whole signal.
type DataOnReadersStatus struct{}
type DataAvailableStatus struct{}

// LivelinessLostStatus reports a writer failing to assert liveliness in time.
type LivelinessLostStatus struct {
	TotalCount       int32
	TotalCountChange int32
}

// LivelinessChangedStatus reports writers becoming (a)live, reader-side.
type LivelinessChangedStatus struct {
	AliveCount         int32
	NotAliveCount      int32
	AliveCountChange   int32
	NotAliveCountChange int32
	LastPublicationHandle uint64
}

// PublicationMatchedStatus reports a writer's matched-reader set changing.
type PublicationMatchedStatus struct {
	TotalCount           int32
	TotalCountChange     int32
	CurrentCount         int32
	CurrentCountChange   int32
	LastSubscriptionHandle uint64
}

// SubscriptionMatchedStatus is the reader-side dual.
type SubscriptionMatchedStatus struct {
	TotalCount           int32
	TotalCountChange     int32
	CurrentCount         int32
	CurrentCountChange   int32
	LastPublicationHandle uint64
}

// statusSet holds the live status structures for one entity and the
// pending status-changes mask (spec.md's read/take_status contract).
type statusSet struct {
	changes StatusMask

	inconsistentTopic      InconsistentTopicStatus
	offeredDeadlineMissed  OfferedDeadlineMissedStatus
	requestedDeadlineMissed RequestedDeadlineMissedStatus
	offeredIncompatibleQoS OfferedIncompatibleQoSStatus
	requestedIncompatibleQoS RequestedIncompatibleQoSStatus
	sampleLost             SampleLostStatus
	sampleRejected         SampleRejectedStatus
	livelinessLost         LivelinessLostStatus
	livelinessChanged      LivelinessChangedStatus
	publicationMatched     PublicationMatchedStatus
	subscriptionMatched    SubscriptionMatchedStatus
}

// readStatus samples the pending-changes mask restricted to interest,
// without clearing it.
func (s *statusSet) readStatus(interest StatusMask) StatusMask { return s.changes & interest }

// takeStatus samples and clears.
func (s *statusSet) takeStatus(interest StatusMask) StatusMask {
	got := s.changes & interest
	s.changes &^= interest
	return got
}

func (s *statusSet) raise(bit StatusMask) { s.changes |= bit }
