// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dds provides a clean, single-import interface to the core:
// domain/participant/publisher/subscriber/topic/reader/writer
// creation, QoS, and the entity/status/waitset machinery (spec.md §6).
// For the (de)serialization VM and type descriptors, use
// github.com/luxfi/dds/vm; for the writer history cache, use
// github.com/luxfi/dds/whc.
package dds

import (
	"time"

	"github.com/luxfi/dds/ddsconfig"
	"github.com/luxfi/dds/entity"
	"github.com/luxfi/dds/internal/ddslog"
	"github.com/luxfi/dds/qos"
	"github.com/luxfi/dds/retcode"
	"github.com/luxfi/dds/whc"
)

// Type aliases for a clean single-import experience.
type (
	Handle   = entity.Handle
	Kind     = entity.Kind
	QoS      = qos.QoS
	Listener = entity.Listener
	WaitSet  = entity.WaitSet
	Config   = ddsconfig.Config
	Logger   = ddslog.Logger
)

// Re-exported entity kinds.
const (
	KindParticipant = entity.KindParticipant
	KindPublisher   = entity.KindPublisher
	KindSubscriber  = entity.KindSubscriber
	KindTopic       = entity.KindTopic
	KindReader      = entity.KindReader
	KindWriter      = entity.KindWriter
)

// Re-exported status bits.
const (
	StatusInconsistentTopic       = entity.InconsistentTopic
	StatusOfferedDeadlineMissed   = entity.OfferedDeadlineMissed
	StatusRequestedDeadlineMissed = entity.RequestedDeadlineMissed
	StatusOfferedIncompatibleQoS  = entity.OfferedIncompatibleQoS
	StatusRequestedIncompatibleQoS = entity.RequestedIncompatibleQoS
	StatusSampleLost              = entity.SampleLost
	StatusSampleRejected           = entity.SampleRejected
	StatusDataOnReaders            = entity.DataOnReaders
	StatusDataAvailable            = entity.DataAvailable
	StatusLivelinessLost           = entity.LivelinessLost
	StatusLivelinessChanged        = entity.LivelinessChanged
	StatusPublicationMatched        = entity.PublicationMatched
	StatusSubscriptionMatched       = entity.SubscriptionMatched
)

// DefaultQoS returns the DDS-specified default policy set.
func DefaultQoS() QoS { return qos.Default() }

// DefaultConfig returns the core's default domain configuration.
func DefaultConfig() (*Config, error) { return ddsconfig.NewBuilder().Build() }

// Domain owns a registry of live entities, rooted at one library root
// entity. It holds no WHCs: CreateWriter hands each writer's cache to
// the caller.
type Domain struct {
	registry *entity.Registry
	root     *entity.Entity
	log      Logger
	config   *Config
}

// NewDomain creates a domain under the given configuration.
func NewDomain(cfg *Config, log Logger) *Domain {
	if log == nil {
		log = ddslog.NoOp()
	}
	reg := entity.NewRegistry()
	root := reg.NewEntity(entity.KindRoot, nil, cfg.DomainID, qos.Default(), true)
	return &Domain{registry: reg, root: root, log: log, config: cfg}
}

// CreateParticipant creates a participant entity under the domain root.
func (d *Domain) CreateParticipant(q QoS) (*entity.Entity, error) {
	if err := qos.Validate(&q); err != nil {
		return nil, err
	}
	autoenable := !q.IsSet(qos.EntityFactory) || q.EntityFactoryAutoenable
	return d.registry.NewEntity(entity.KindParticipant, d.root, d.config.DomainID, q, autoenable), nil
}

// CreatePublisher creates a publisher under participant.
func (d *Domain) CreatePublisher(participant *entity.Entity, q QoS) (*entity.Entity, error) {
	if participant.Kind() != entity.KindParticipant {
		return nil, retcode.ErrIllegalOperation
	}
	return d.registry.NewEntity(entity.KindPublisher, participant, d.config.DomainID, q, participant.Enabled()), nil
}

// CreateSubscriber creates a subscriber under participant.
func (d *Domain) CreateSubscriber(participant *entity.Entity, q QoS) (*entity.Entity, error) {
	if participant.Kind() != entity.KindParticipant {
		return nil, retcode.ErrIllegalOperation
	}
	return d.registry.NewEntity(entity.KindSubscriber, participant, d.config.DomainID, q, participant.Enabled()), nil
}

// CreateTopic creates a topic under participant.
func (d *Domain) CreateTopic(participant *entity.Entity, name, typeName string, q QoS) (*entity.Entity, error) {
	if participant.Kind() != entity.KindParticipant {
		return nil, retcode.ErrIllegalOperation
	}
	q.Set(qos.TopicName)
	q.TopicNameValue = name
	q.Set(qos.TypeName)
	q.TypeNameValue = typeName
	if err := qos.Validate(&q); err != nil {
		return nil, err
	}
	return d.registry.NewEntity(entity.KindTopic, participant, d.config.DomainID, q, participant.Enabled()), nil
}

// CreateWriter creates a writer under publisher (which may be an
// explicit publisher or a participant, in which case an implicit
// publisher is created first, per spec.md §4.3).
func (d *Domain) CreateWriter(publisher *entity.Entity, topic *entity.Entity, q QoS) (*entity.Entity, *whc.WHC, error) {
	pub := publisher
	if pub.Kind() == entity.KindParticipant {
		implicit, err := d.CreatePublisher(pub, qos.Default())
		if err != nil {
			return nil, nil, err
		}
		pub = implicit
	}
	if pub.Kind() != entity.KindPublisher {
		return nil, nil, retcode.ErrIllegalOperation
	}
	if err := qos.Validate(&q); err != nil {
		return nil, nil, err
	}
	w := d.registry.NewEntity(entity.KindWriter, pub, d.config.DomainID, q, pub.Enabled())
	w.SetTopic(topic)
	cache := whc.New(q.HistoryValue, q.ResourceLimitsValue)
	return w, cache, nil
}

// CreateReader creates a reader under subscriber, with the same
// implicit-subscriber behaviour as CreateWriter.
func (d *Domain) CreateReader(subscriber *entity.Entity, topic *entity.Entity, q QoS) (*entity.Entity, error) {
	sub := subscriber
	if sub.Kind() == entity.KindParticipant {
		implicit, err := d.CreateSubscriber(sub, qos.Default())
		if err != nil {
			return nil, err
		}
		sub = implicit
	}
	if sub.Kind() != entity.KindSubscriber {
		return nil, retcode.ErrIllegalOperation
	}
	if err := qos.Validate(&q); err != nil {
		return nil, err
	}
	r := d.registry.NewEntity(entity.KindReader, sub, d.config.DomainID, q, sub.Enabled())
	r.SetTopic(topic)
	return r, nil
}

// Delete deletes e and its entire subtree.
func (d *Domain) Delete(e *entity.Entity) error { return d.registry.Delete(e) }

// Lookup resolves a handle to its live entity.
func (d *Domain) Lookup(h Handle) (*entity.Entity, bool) { return d.registry.Lookup(h) }

// Match decides reader/writer QoS compatibility, per spec.md §4.2.
// On an incompatible match it also updates both endpoints'
// *_INCOMPATIBLE_QOS status with the single failing policy id (spec.md:
// "Matching a reader against a writer with incompatible QoS updates
// both endpoints' *_INCOMPATIBLE_QOS status, including the single
// 'worst' policy id").
func Match(reader, writer *entity.Entity) (bool, qos.PolicyID) {
	rq, wq := reader.QoS(), writer.QoS()
	reason := qos.Match(&rq, &wq, qos.RXOMask|qos.TopicName|qos.Partition|qos.DataRepresentation)
	if reason != qos.ReasonNone {
		writer.RaiseOfferedIncompatibleQoS(uint64(reason))
		reader.RaiseRequestedIncompatibleQoS(uint64(reason))
	}
	return reason == qos.ReasonNone, reason
}

// WaitUntilMatched blocks until writer's PublicationMatched status
// fires or timeout elapses, a common convenience built directly on
// the waitset machinery.
func WaitUntilMatched(writer *entity.Entity, timeout time.Duration) error {
	ws := entity.NewWaitSet()
	defer ws.Delete()
	if err := ws.AttachEntity(writer, entity.PublicationMatched); err != nil {
		return err
	}
	_, err := ws.Wait(timeout)
	return err
}
