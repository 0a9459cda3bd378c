// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package qos

import "github.com/luxfi/dds/retcode"

// Validate checks a QoS set for internal consistency (spec.md §4.2
// "Validation"). It returns nil or retcode.ErrBadParameter.
func Validate(q *QoS) error {
	if q.IsSet(Durability) {
		if q.DurabilityValue.Kind < Volatile || q.DurabilityValue.Kind > Persistent {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(Presentation) {
		if q.PresentationValue.AccessScope < InstanceScope || q.PresentationValue.AccessScope > GroupScope {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(Deadline) && q.DeadlineValue < 0 {
		return retcode.ErrBadParameter
	}
	if q.IsSet(LatencyBudget) && q.LatencyBudgetValue < 0 {
		return retcode.ErrBadParameter
	}
	if q.IsSet(Lifespan) && q.LifespanValue < 0 {
		return retcode.ErrBadParameter
	}
	if q.IsSet(Liveliness) {
		lv := q.LivelinessValue
		if lv.Kind < Automatic || lv.Kind > ManualByTopic {
			return retcode.ErrBadParameter
		}
		if lv.LeaseDuration < 0 {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(Reliability) {
		rv := q.ReliabilityValue
		if rv.Kind < BestEffort || rv.Kind > Reliable {
			return retcode.ErrBadParameter
		}
		if rv.MaxBlockingTime < 0 {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(DestinationOrder) {
		if q.DestinationOrderValue < ByReceptionTimestamp || q.DestinationOrderValue > BySourceTimestamp {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(History) {
		hv := q.HistoryValue
		if hv.Kind != KeepLast && hv.Kind != KeepAll {
			return retcode.ErrBadParameter
		}
		if hv.Kind == KeepLast && hv.Depth < 1 {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(ResourceLimits) {
		if err := validateResourceLimits(q.ResourceLimitsValue); err != nil {
			return err
		}
		if q.IsSet(History) && q.HistoryValue.Kind == KeepLast {
			rl := q.ResourceLimitsValue
			if rl.MaxSamplesPerInstance != LengthUnlimited && rl.MaxSamplesPerInstance < q.HistoryValue.Depth {
				return retcode.ErrBadParameter
			}
		}
	}
	if q.IsSet(Ownership) {
		if q.OwnershipValue != Shared && q.OwnershipValue != Exclusive {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(TimeBasedFilter) && q.TimeBasedFilterValue.MinimumSeparation < 0 {
		return retcode.ErrBadParameter
	}
	if q.IsSet(IgnoreLocal) {
		if q.IgnoreLocalValue < IgnoreLocalNone || q.IgnoreLocalValue > IgnoreLocalProcess {
			return retcode.ErrBadParameter
		}
	}
	if q.IsSet(TypeConsistencyEnforcement) {
		k := q.TypeConsistencyValue.Kind
		if k != DisallowTypeCoercion && k != AllowTypeCoercion {
			return retcode.ErrBadParameter
		}
	}
	return nil
}

func validateResourceLimits(rl ResourceLimitsValue) error {
	for _, v := range []int32{rl.MaxSamples, rl.MaxInstances, rl.MaxSamplesPerInstance} {
		if v != LengthUnlimited && v < 0 {
			return retcode.ErrBadParameter
		}
	}
	if rl.MaxSamples != LengthUnlimited && rl.MaxSamplesPerInstance != LengthUnlimited &&
		rl.MaxSamples < rl.MaxSamplesPerInstance {
		return retcode.ErrBadParameter
	}
	return nil
}

// CheckImmutable returns retcode.ErrImmutablePolicy if any bit in changed
// falls outside ChangeableMask — used when mutating the QoS of an
// already-enabled entity (spec.md §4.2 "Changeability").
func CheckImmutable(changed PolicyID) error {
	if changed&^ChangeableMask != 0 {
		return retcode.ErrImmutablePolicy
	}
	return nil
}
