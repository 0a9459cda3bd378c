// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package entity implements the entity tree, status core, listener
// propagation, and waitset/condition machinery of spec.md §4.3: a
// typed hierarchy of participants, publishers/subscribers, topics,
// readers/writers and the conditions that observe them.
package entity

import "fmt"

// Kind tags every node in the entity tree (spec.md §3, "Entity").
type Kind int

const (
	KindRoot Kind = iota
	KindDomain
	KindParticipant
	KindPublisher
	KindSubscriber
	KindTopic
	KindReader
	KindWriter
	KindReadCondition
	KindQueryCondition
	KindGuardCondition
	KindWaitSet
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindDomain:
		return "domain"
	case KindParticipant:
		return "participant"
	case KindPublisher:
		return "publisher"
	case KindSubscriber:
		return "subscriber"
	case KindTopic:
		return "topic"
	case KindReader:
		return "reader"
	case KindWriter:
		return "writer"
	case KindReadCondition:
		return "read_condition"
	case KindQueryCondition:
		return "query_condition"
	case KindGuardCondition:
		return "guard_condition"
	case KindWaitSet:
		return "waitset"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindMask is a bitset over Kind, used to validate an operation's
// applicable entity kinds in one check (spec.md's "DONTCARE").
type KindMask uint32

func MaskOf(kinds ...Kind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= 1 << uint(k)
	}
	return m
}

func (m KindMask) Has(k Kind) bool { return m&(1<<uint(k)) != 0 }

// DontCare matches any kind; used only in lookup paths, never to
// authorize an operation.
const DontCare KindMask = ^KindMask(0)
