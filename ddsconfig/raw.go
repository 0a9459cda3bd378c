// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ddsconfig

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/luxfi/dds/retcode"
)

// knownRawKeys is the exact set of keys the raw-initializer path
// accepts; anything else is rejected with BAD_PARAMETER (spec.md §6's
// configuration surface names a closed set of respected keys).
var knownRawKeys = map[string]bool{
	"domain_id": true, "transport": true, "lease_duration": true,
	"whc_low": true, "whc_high": true, "whc_initial_high": true,
	"max_sample_size": true, "entity_naming_mode": true, "entity_naming_seed": true,
}

// LoadRaw applies a raw initializer record (spec.md: "...or an
// initializer record") expressed as a flat key/value map, using
// viper purely as a typed accessor over that map — the same role it
// plays for the teacher's other configuration surfaces.
func LoadRaw(b *Builder, values map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	for k := range values {
		if !knownRawKeys[k] {
			b.err = fmt.Errorf("%w: unknown configuration key %q", retcode.ErrBadParameter, k)
			return b
		}
	}

	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}

	if v.IsSet("domain_id") {
		b = b.WithDomainID(v.GetInt32("domain_id"))
	}
	if v.IsSet("transport") {
		b = b.WithTransport(TransportSelector(v.GetString("transport")))
	}
	if v.IsSet("lease_duration") {
		b = b.WithLeaseDuration(v.GetDuration("lease_duration"))
	}
	if v.IsSet("whc_low") || v.IsSet("whc_high") || v.IsSet("whc_initial_high") {
		low, high, initial := b.config.WHCLowWatermark, b.config.WHCHighWatermark, b.config.WHCInitialHighWatermark
		if v.IsSet("whc_low") {
			low = v.GetInt("whc_low")
		}
		if v.IsSet("whc_high") {
			high = v.GetInt("whc_high")
		}
		if v.IsSet("whc_initial_high") {
			initial = v.GetInt("whc_initial_high")
		}
		b = b.WithWHCWatermarks(low, high, initial)
	}
	if v.IsSet("max_sample_size") {
		b = b.WithMaxSampleSize(v.GetInt("max_sample_size"))
	}
	if v.IsSet("entity_naming_mode") {
		b = b.WithEntityNaming(EntityNamingMode(v.GetString("entity_naming_mode")), v.GetInt64("entity_naming_seed"))
	}
	return b
}
