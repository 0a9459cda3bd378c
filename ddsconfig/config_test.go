// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ddsconfig

import (
	"testing"
	"time"
)

func TestBuilderDefaults(t *testing.T) {
	cfg, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.WHCLowWatermark > cfg.WHCInitialHighWatermark || cfg.WHCInitialHighWatermark > cfg.WHCHighWatermark {
		t.Fatalf("expected low <= initial <= high watermarks, got %+v", cfg)
	}
}

func TestWithDomainIDRejectsNegative(t *testing.T) {
	_, err := NewBuilder().WithDomainID(-1).Build()
	if err == nil {
		t.Fatal("expected BAD_PARAMETER for negative domain id")
	}
}

func TestWithWHCWatermarksRejectsInconsistentOrder(t *testing.T) {
	_, err := NewBuilder().WithWHCWatermarks(100, 10, 50).Build()
	if err == nil {
		t.Fatal("expected BAD_PARAMETER for high < low watermark")
	}
}

func TestErrorShortCircuitsChain(t *testing.T) {
	b := NewBuilder().WithDomainID(-1).WithLeaseDuration(5 * time.Second)
	if _, err := b.Build(); err == nil {
		t.Fatal("expected the first error in the chain to be preserved")
	}
}

func TestLoadRawRejectsUnknownKey(t *testing.T) {
	b := LoadRaw(NewBuilder(), map[string]any{"bogus_key": 1})
	if _, err := b.Build(); err == nil {
		t.Fatal("expected BAD_PARAMETER for unknown raw configuration key")
	}
}

func TestLoadRawAppliesKnownKeys(t *testing.T) {
	b := LoadRaw(NewBuilder(), map[string]any{
		"domain_id":      int32(5),
		"lease_duration": "15s",
	})
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.DomainID != 5 {
		t.Fatalf("expected domain id 5, got %d", cfg.DomainID)
	}
	if cfg.LeaseDuration != 15*time.Second {
		t.Fatalf("expected lease duration 15s, got %v", cfg.LeaseDuration)
	}
}

func TestLoadXMLLiteral(t *testing.T) {
	xmlDoc := `<Domain Id="3"><General><Transport>udp</Transport></General></Domain>`
	cfg, err := LoadXML(NewBuilder(), xmlDoc).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.DomainID != 3 {
		t.Fatalf("expected domain id 3, got %d", cfg.DomainID)
	}
	if cfg.Transport != TransportUDP {
		t.Fatalf("expected udp transport, got %v", cfg.Transport)
	}
}
