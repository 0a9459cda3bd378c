// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package qos

import "time"

// Duration sentinel values, mirroring DDS_INFINITY / DDS_DURATION semantics.
const (
	DurationZero     time.Duration = 0
	DurationInfinite time.Duration = 1<<63 - 1
)

// DurabilityValue holds the DURABILITY policy value.
type DurabilityValue struct {
	Kind DurabilityKind
}

// DurabilityServiceValue holds the DURABILITY_SERVICE policy value.
type DurabilityServiceValue struct {
	CleanupDelay           time.Duration
	History                HistoryKind
	HistoryDepth           int32
	MaxSamples             int32
	MaxInstances           int32
	MaxSamplesPerInstance  int32
}

// PresentationValue holds the PRESENTATION policy value.
type PresentationValue struct {
	AccessScope     AccessScopeKind
	CoherentAccess  bool
	OrderedAccess   bool
}

// LivelinessValue holds the LIVELINESS policy value.
type LivelinessValue struct {
	Kind          LivelinessKind
	LeaseDuration time.Duration
}

// ReliabilityValue holds the RELIABILITY policy value.
type ReliabilityValue struct {
	Kind            ReliabilityKind
	MaxBlockingTime time.Duration
}

// HistoryValue holds the HISTORY policy value.
type HistoryValue struct {
	Kind  HistoryKind
	Depth int32
}

// ResourceLimitsValue holds the RESOURCE_LIMITS policy value.
type ResourceLimitsValue struct {
	MaxSamples            int32
	MaxInstances          int32
	MaxSamplesPerInstance int32
}

// TimeBasedFilterValue holds the TIME_BASED_FILTER policy value.
type TimeBasedFilterValue struct {
	MinimumSeparation time.Duration
}

// WriterDataLifecycleValue holds the WRITER_DATA_LIFECYCLE policy value.
type WriterDataLifecycleValue struct {
	AutodisposeUnregisteredInstances bool
}

// ReaderDataLifecycleValue holds the READER_DATA_LIFECYCLE policy value.
type ReaderDataLifecycleValue struct {
	AutopurgeNoWriterSamplesDelay time.Duration
	AutopurgeDisposedSamplesDelay time.Duration
}

// TypeConsistencyEnforcementValue holds the TYPE_CONSISTENCY_ENFORCEMENT value.
type TypeConsistencyEnforcementValue struct {
	Kind                     TypeConsistencyKind
	IgnoreSequenceBounds     bool
	IgnoreStringBounds       bool
	IgnoreMemberNames        bool
	PreventTypeWidening      bool
	ForceTypeValidation      bool
}

// TypeInformationValue carries the XCDR2-serialized TypeInformation blob
// used by assignability-based matching. Opaque to this package.
type TypeInformationValue struct {
	MinimalHash  [16]byte
	CompleteHash [16]byte
	Blob         []byte
}

// PropertyValue holds the PROPERTY policy value: a map of string to
// string plus a map of string to bytes (binary values are never matched).
type PropertyValue struct {
	Strings map[string]string
	Binary  map[string][]byte
}

// QoS is a sparse map from PolicyID to a typed value, represented as a
// present/aliased bitmask pair plus the union of policy values (spec.md
// §3 "QoS set"). A policy is either set (bit in Present) or unset
// (takes the DDS-specified default on use, see Default()). Aliased bits
// mark values whose owned buffers (strings, byte slices, maps) point
// into caller memory and must be deep-copied before the QoS set
// outlives that memory — see Copy.
type QoS struct {
	Present PolicyID
	Aliased PolicyID

	TopicNameValue string
	TypeNameValue  string

	UserDataValue  []byte
	TopicDataValue []byte
	GroupDataValue []byte

	DurabilityValue        DurabilityValue
	DurabilityServiceValue DurabilityServiceValue
	PresentationValue      PresentationValue
	DeadlineValue          time.Duration
	LatencyBudgetValue     time.Duration
	LivelinessValue        LivelinessValue
	ReliabilityValue       ReliabilityValue
	DestinationOrderValue  DestinationOrderKind
	HistoryValue           HistoryValue
	ResourceLimitsValue    ResourceLimitsValue
	TransportPriorityValue int32
	LifespanValue          time.Duration
	OwnershipValue         OwnershipKind
	OwnershipStrengthValue int32
	TimeBasedFilterValue   TimeBasedFilterValue
	PartitionValue         []string
	WriterDataLifecycleValue WriterDataLifecycleValue
	ReaderDataLifecycleValue ReaderDataLifecycleValue
	IgnoreLocalValue       IgnoreLocalKind
	EntityFactoryAutoenable bool
	TypeConsistencyValue   TypeConsistencyEnforcementValue
	TypeInformationValue   TypeInformationValue
	DataRepresentationValue []int32
	EntityNameValue        string
	PropertyValue          PropertyValue
}

// Default returns the DDS-specified default QoS (everything unset,
// as-if every policy were taking its built-in default value), matching
// dds_public_qosdefs.h / dds_public_qos.h.
func Default() QoS {
	return QoS{
		DurabilityValue:       DurabilityValue{Kind: Volatile},
		PresentationValue:     PresentationValue{AccessScope: InstanceScope},
		DeadlineValue:         DurationInfinite,
		LatencyBudgetValue:    DurationZero,
		LivelinessValue:       LivelinessValue{Kind: Automatic, LeaseDuration: DurationInfinite},
		ReliabilityValue:      ReliabilityValue{Kind: BestEffort, MaxBlockingTime: 100 * time.Millisecond},
		DestinationOrderValue: ByReceptionTimestamp,
		HistoryValue:          HistoryValue{Kind: KeepLast, Depth: 1},
		ResourceLimitsValue: ResourceLimitsValue{
			MaxSamples:            LengthUnlimited,
			MaxInstances:          LengthUnlimited,
			MaxSamplesPerInstance: LengthUnlimited,
		},
		OwnershipValue:          Shared,
		TimeBasedFilterValue:    TimeBasedFilterValue{MinimumSeparation: DurationZero},
		WriterDataLifecycleValue: WriterDataLifecycleValue{AutodisposeUnregisteredInstances: true},
		IgnoreLocalValue:        IgnoreLocalNone,
		EntityFactoryAutoenable: true,
		DataRepresentationValue: []int32{0, 2}, // XCDR1, XCDR2
	}
}

// Set marks a policy present (and not aliased); callers set the
// corresponding value field themselves before or after calling Set.
func (q *QoS) Set(p PolicyID) { q.Present |= p }

// SetAliased marks a policy present and aliased: its buffers point into
// caller memory and the set must be Copy'd before that memory is freed.
func (q *QoS) SetAliased(p PolicyID) {
	q.Present |= p
	q.Aliased |= p
}

// Unset clears a policy's presence (and alias) bit. The value field is
// left untouched but is no longer meaningful.
func (q *QoS) Unset(p PolicyID) {
	q.Present &^= p
	q.Aliased &^= p
}

// IsSet reports whether p is present in q.
func (q *QoS) IsSet(p PolicyID) bool { return q.Present.Has(p) }
