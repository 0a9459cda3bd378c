// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package builtintopic implements the four built-in pseudo-topics that
// project discovery data to the application (spec.md §4.5): fixed
// pseudo-handles, GUID-based keys, and the matched-peer query surface.
package builtintopic

import (
	"sync"

	"github.com/google/uuid"

	"github.com/luxfi/dds/entity"
	"github.com/luxfi/dds/qos"
)

// GUID is the network-stable 16-byte key used by every builtin-topic
// sample (spec.md: "Keys are network-stable GUIDs").
type GUID [16]byte

// NewGUID derives a fresh GUID from a random UUIDv4, matching the
// domain-wide uniqueness the original's GUID allocator provides.
// google/uuid's collision-resistant random generation is exactly the
// property a GUID allocator needs, so no bespoke generator is written.
func NewGUID() GUID {
	id := uuid.New()
	var g GUID
	copy(g[:], id[:])
	return g
}

// Pseudo-handles for the four built-in topics: fixed, non-overlapping
// with real entity handles, and never freed (spec.md §3).
const (
	PseudoHandleParticipant entity.Handle = -1
	PseudoHandleTopic       entity.Handle = -2
	PseudoHandlePublication entity.Handle = -3
	PseudoHandleSubscription entity.Handle = -4
)

// ParticipantBuiltinTopicData is the *participant* pseudo-topic sample.
type ParticipantBuiltinTopicData struct {
	Key GUID
	QoS qos.QoS
}

// TopicBuiltinTopicData is the *topic* pseudo-topic sample.
type TopicBuiltinTopicData struct {
	Key      GUID
	TopicName string
	TypeName  string
	QoS       qos.QoS
}

// PublicationBuiltinTopicData is the *publication* (writer) pseudo-topic sample.
type PublicationBuiltinTopicData struct {
	Key                   GUID
	ParticipantKey        GUID
	ParticipantInstanceHandle entity.Handle
	TopicName             string
	TypeName              string
	QoS                   qos.QoS
}

// SubscriptionBuiltinTopicData is the *subscription* (reader) pseudo-topic sample.
type SubscriptionBuiltinTopicData struct {
	Key                   GUID
	ParticipantKey        GUID
	ParticipantInstanceHandle entity.Handle
	TopicName             string
	TypeName              string
	QoS                   qos.QoS
}

// Directory is the discovery-data store behind the four pseudo-topics:
// an external collaborator (SEDP/SPDP, out of scope per spec.md §1)
// would populate it; the core only reads and projects it.
type Directory struct {
	mu sync.RWMutex

	participants map[GUID]ParticipantBuiltinTopicData
	topics       map[GUID]TopicBuiltinTopicData
	publications map[GUID]PublicationBuiltinTopicData
	subscriptions map[GUID]SubscriptionBuiltinTopicData

	// matchedPublications/matchedSubscriptions map a local reader/writer
	// instance handle to the set of matched peer GUIDs.
	matchedPublications  map[entity.Handle]map[GUID]struct{}
	matchedSubscriptions map[entity.Handle]map[GUID]struct{}
}

func NewDirectory() *Directory {
	return &Directory{
		participants:         make(map[GUID]ParticipantBuiltinTopicData),
		topics:                make(map[GUID]TopicBuiltinTopicData),
		publications:          make(map[GUID]PublicationBuiltinTopicData),
		subscriptions:         make(map[GUID]SubscriptionBuiltinTopicData),
		matchedPublications:   make(map[entity.Handle]map[GUID]struct{}),
		matchedSubscriptions:  make(map[entity.Handle]map[GUID]struct{}),
	}
}

func (d *Directory) PutParticipant(data ParticipantBuiltinTopicData) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.participants[data.Key] = data
}

func (d *Directory) PutTopic(data TopicBuiltinTopicData) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.topics[data.Key] = data
}

func (d *Directory) PutPublication(data PublicationBuiltinTopicData) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.publications[data.Key] = data
}

func (d *Directory) PutSubscription(data SubscriptionBuiltinTopicData) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscriptions[data.Key] = data
}

// RecordMatch registers peerGUID as matched against local, on either
// the publication or subscription side.
func (d *Directory) RecordMatch(local entity.Handle, peer GUID, isWriter bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	table := d.matchedPublications
	if isWriter {
		table = d.matchedSubscriptions
	}
	if table[local] == nil {
		table[local] = make(map[GUID]struct{})
	}
	table[local][peer] = struct{}{}
}

// GetMatchedSubscriptions returns the GUIDs of the readers currently
// matched to the local writer, in no particular order, or nil when
// none are matched. It returns GUIDs, not instance handles, and takes
// no caller-supplied output slice.
func (d *Directory) GetMatchedSubscriptions(writer entity.Handle) []GUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return guidsOf(d.matchedSubscriptions[writer])
}

// GetMatchedPublications is the reader-side dual.
func (d *Directory) GetMatchedPublications(reader entity.Handle) []GUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return guidsOf(d.matchedPublications[reader])
}

func guidsOf(set map[GUID]struct{}) []GUID {
	if len(set) == 0 {
		return nil
	}
	out := make([]GUID, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	return out
}

// GetMatchedSubscriptionData synthesises a freshly allocated
// subscription sample for one matched peer, by intersecting a
// discovery read with the local matched set (spec.md §4.5).
func (d *Directory) GetMatchedSubscriptionData(writer entity.Handle, peer GUID) (SubscriptionBuiltinTopicData, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, matched := d.matchedSubscriptions[writer][peer]; !matched {
		return SubscriptionBuiltinTopicData{}, false
	}
	data, ok := d.subscriptions[peer]
	return data, ok
}

// GetMatchedPublicationData is the reader-side dual.
func (d *Directory) GetMatchedPublicationData(reader entity.Handle, peer GUID) (PublicationBuiltinTopicData, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, matched := d.matchedPublications[reader][peer]; !matched {
		return PublicationBuiltinTopicData{}, false
	}
	data, ok := d.publications[peer]
	return data, ok
}
