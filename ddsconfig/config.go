// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ddsconfig adapts the teacher's fluent config.Builder pattern
// to the domain configuration surface of spec.md §6: an XML fragment
// (path or literal string) or a raw initializer record, selecting
// among the keys the core must respect.
package ddsconfig

import (
	"fmt"
	"time"

	"github.com/luxfi/dds/retcode"
)

// TransportSelector names the transport the domain should bind.
type TransportSelector string

const (
	TransportDefault TransportSelector = "default"
	TransportUDP     TransportSelector = "udp"
	TransportTCP     TransportSelector = "tcp"
	TransportSharedMemory TransportSelector = "shm"
)

// EntityNamingMode controls whether entities get an empty or a
// domain-seeded "fancy" default name (spec.md's "Entity naming").
type EntityNamingMode string

const (
	EntityNamingEmpty EntityNamingMode = "empty"
	EntityNamingFancy EntityNamingMode = "fancy"
)

// Config holds the domain configuration surface (spec.md §6,
// "Configuration surface").
type Config struct {
	DomainID int32

	TraceMask string
	TraceFile string

	Transport          TransportSelector
	AllowMulticastMask  uint32
	ParticipantIndexStrategy string

	SPDPInterval      time.Duration
	SPDPResponseDelay time.Duration
	LeaseDuration     time.Duration

	HeartbeatIntervalMin time.Duration
	HeartbeatIntervalMax time.Duration
	RetransmitMergingPeriod time.Duration
	SquashParticipants bool

	LivelinessMonitoring        bool
	LivelinessMonitoringInterval time.Duration

	MultipleReceiveThreads bool
	ReorderQueueSize       int
	DeliveryQueueSize      int

	FragmentSize        int
	MaxMessageSize      int
	MaxRetransmitBurstSize int

	WHCLowWatermark        int
	WHCHighWatermark       int
	WHCInitialHighWatermark int
	WHCBatch               bool

	MaxSampleSize int

	MulticastTTL int

	SocketSendBufferSize    int
	SocketReceiveBufferSize int

	TCPNoDelay bool

	Security Properties

	IceoryxEnabled bool
	IceoryxServiceName string

	EntityNamingMode EntityNamingMode
	EntityNamingSeed int64

	ThreadProperties map[string]ThreadProperty
}

// Properties is the domain's optional SSL/DDS-Security property set.
type Properties struct {
	Strings map[string]string
	Binary  map[string][]byte
}

// ThreadProperty describes a named thread's scheduling parameters.
type ThreadProperty struct {
	SchedulingClass string
	Priority        int32
	StackSize       int
}

// Builder assembles a Config fluently, accumulating the first error
// encountered (the teacher's config.Builder idiom) so a chain of
// With* calls can be written without checking each one.
type Builder struct {
	config *Config
	err    error
}

// NewBuilder returns a Builder seeded with the core's defaults.
func NewBuilder() *Builder {
	return &Builder{
		config: &Config{
			DomainID:                0,
			Transport:               TransportDefault,
			ParticipantIndexStrategy: "auto",
			SPDPInterval:            30 * time.Second,
			LeaseDuration:           10 * time.Second,
			HeartbeatIntervalMin:    20 * time.Millisecond,
			HeartbeatIntervalMax:    8 * time.Second,
			ReorderQueueSize:        200,
			DeliveryQueueSize:       200,
			FragmentSize:            1344,
			MaxMessageSize:          65536,
			MaxRetransmitBurstSize:  65536,
			WHCLowWatermark:         1,
			WHCHighWatermark:        500000,
			WHCInitialHighWatermark: 30000,
			MaxSampleSize:           2147483647,
			MulticastTTL:            32,
			EntityNamingMode:        EntityNamingEmpty,
			ThreadProperties:        make(map[string]ThreadProperty),
		},
	}
}

func (b *Builder) WithDomainID(id int32) *Builder {
	if b.err != nil {
		return b
	}
	if id < 0 {
		b.err = fmt.Errorf("%w: domain id must be non-negative, got %d", retcode.ErrBadParameter, id)
		return b
	}
	b.config.DomainID = id
	return b
}

func (b *Builder) WithTransport(t TransportSelector) *Builder {
	if b.err != nil {
		return b
	}
	b.config.Transport = t
	return b
}

func (b *Builder) WithLeaseDuration(d time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if d <= 0 {
		b.err = fmt.Errorf("%w: lease duration must be positive", retcode.ErrBadParameter)
		return b
	}
	b.config.LeaseDuration = d
	return b
}

func (b *Builder) WithWHCWatermarks(low, high, initialHigh int) *Builder {
	if b.err != nil {
		return b
	}
	if low < 0 || high < low || initialHigh < low || initialHigh > high {
		b.err = fmt.Errorf("%w: whc watermarks must satisfy 0 <= low <= initial <= high", retcode.ErrBadParameter)
		return b
	}
	b.config.WHCLowWatermark = low
	b.config.WHCHighWatermark = high
	b.config.WHCInitialHighWatermark = initialHigh
	return b
}

func (b *Builder) WithMaxSampleSize(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n <= 0 {
		b.err = fmt.Errorf("%w: max_sample_size must be positive", retcode.ErrBadParameter)
		return b
	}
	b.config.MaxSampleSize = n
	return b
}

func (b *Builder) WithEntityNaming(mode EntityNamingMode, seed int64) *Builder {
	if b.err != nil {
		return b
	}
	if mode != EntityNamingEmpty && mode != EntityNamingFancy {
		b.err = fmt.Errorf("%w: unknown entity naming mode %q", retcode.ErrBadParameter, mode)
		return b
	}
	b.config.EntityNamingMode = mode
	b.config.EntityNamingSeed = seed
	return b
}

func (b *Builder) WithThreadProperty(name string, p ThreadProperty) *Builder {
	if b.err != nil {
		return b
	}
	b.config.ThreadProperties[name] = p
	return b
}

// Build returns the assembled Config, or the first error accumulated
// during the chain.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.config, nil
}
