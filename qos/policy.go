// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qos implements the sparse QoS policy set described in spec.md
// §3/§4.2: a present/aliased bitmask pair over a fixed policy
// enumeration, plus validation, merge/copy/delta, and reader/writer
// compatibility matching.
package qos

// PolicyID enumerates every policy the core recognises, bit-numbered the
// same way ddsi_xqos.h numbers DDSI_QP_* so the present/aliased bitmasks
// line up with the wire-level QoS parameter list one for one.
type PolicyID uint64

const (
	TopicName PolicyID = 1 << iota
	TypeName
	Presentation
	Partition
	GroupData
	TopicData
	Durability
	DurabilityService
	Deadline
	LatencyBudget
	Liveliness
	Reliability
	DestinationOrder
	History
	ResourceLimits
	TransportPriority
	Lifespan
	UserData
	Ownership
	OwnershipStrength
	TimeBasedFilter
	WriterDataLifecycle
	ReaderDataLifecycle
	IgnoreLocal
	EntityFactory
	TypeConsistencyEnforcement
	TypeInformation
	DataRepresentation
	EntityName
	Property
)

// RXOMask is the set of policies the matcher consults: those whose
// reader/writer compatibility affects discovery (receiver-relevant QoS).
const RXOMask = Durability | Presentation | Deadline | LatencyBudget |
	Ownership | Liveliness | Reliability | DestinationOrder | DataRepresentation

// ChangeableMask is the statically known subset of policies mutable
// after the owning entity is enabled (spec.md §4.2 "Changeability").
const ChangeableMask = UserData | TopicData | GroupData | Deadline |
	LatencyBudget | OwnershipStrength | TimeBasedFilter | Partition |
	TransportPriority | Lifespan | EntityFactory | WriterDataLifecycle |
	ReaderDataLifecycle

// Has reports whether mask includes p.
func (mask PolicyID) Has(p PolicyID) bool { return mask&p != 0 }

// String returns a human-readable name for a single policy bit, used in
// match-failure reporting and log fields. Unknown/combined masks print
// as "UNKNOWN_POLICY".
func (p PolicyID) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "UNKNOWN_POLICY"
}

var policyNames = map[PolicyID]string{
	TopicName:                  "TOPIC_NAME",
	TypeName:                   "TYPE_NAME",
	Presentation:               "PRESENTATION",
	Partition:                  "PARTITION",
	GroupData:                  "GROUP_DATA",
	TopicData:                  "TOPIC_DATA",
	Durability:                 "DURABILITY",
	DurabilityService:          "DURABILITY_SERVICE",
	Deadline:                   "DEADLINE",
	LatencyBudget:              "LATENCY_BUDGET",
	Liveliness:                 "LIVELINESS",
	Reliability:                "RELIABILITY",
	DestinationOrder:           "DESTINATION_ORDER",
	History:                    "HISTORY",
	ResourceLimits:             "RESOURCE_LIMITS",
	TransportPriority:          "TRANSPORT_PRIORITY",
	Lifespan:                   "LIFESPAN",
	UserData:                   "USER_DATA",
	Ownership:                  "OWNERSHIP",
	OwnershipStrength:          "OWNERSHIP_STRENGTH",
	TimeBasedFilter:            "TIME_BASED_FILTER",
	WriterDataLifecycle:        "WRITER_DATA_LIFECYCLE",
	ReaderDataLifecycle:        "READER_DATA_LIFECYCLE",
	IgnoreLocal:                "IGNORE_LOCAL",
	EntityFactory:              "ENTITY_FACTORY",
	TypeConsistencyEnforcement: "TYPE_CONSISTENCY_ENFORCEMENT",
	TypeInformation:            "TYPE_INFORMATION",
	DataRepresentation:         "DATA_REPRESENTATION",
	EntityName:                 "ENTITY_NAME",
	Property:                   "PROPERTY",
}

// Ordinal-valued sub-enumerations, ordered so int comparison implements
// the "W >= R" rules spec.md §4.2 describes.
type DurabilityKind int32

const (
	Volatile DurabilityKind = iota
	TransientLocal
	Transient
	Persistent
)

type HistoryKind int32

const (
	KeepLast HistoryKind = iota
	KeepAll
)

type OwnershipKind int32

const (
	Shared OwnershipKind = iota
	Exclusive
)

type LivelinessKind int32

const (
	Automatic LivelinessKind = iota
	ManualByParticipant
	ManualByTopic
)

type ReliabilityKind int32

const (
	BestEffort ReliabilityKind = iota
	Reliable
)

type DestinationOrderKind int32

const (
	ByReceptionTimestamp DestinationOrderKind = iota
	BySourceTimestamp
)

type AccessScopeKind int32

const (
	InstanceScope AccessScopeKind = iota
	TopicScope
	GroupScope
)

type IgnoreLocalKind int32

const (
	IgnoreLocalNone IgnoreLocalKind = iota
	IgnoreLocalParticipant
	IgnoreLocalProcess
)

type TypeConsistencyKind int32

const (
	DisallowTypeCoercion TypeConsistencyKind = iota
	AllowTypeCoercion
)

// LengthUnlimited is the DDS sentinel for "no limit" on a resource-limit
// or history-depth field.
const LengthUnlimited = -1
