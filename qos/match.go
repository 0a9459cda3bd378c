// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package qos

import "strings"

// Reason identifies the first policy that failed compatibility, or
// ReasonNone when the match succeeded.
type Reason = PolicyID

// ReasonNone is returned by Match when the reader and writer are
// compatible.
const ReasonNone PolicyID = 0

// TypeLookupSide records which endpoint(s) need a type-lookup request
// issued before a deferred match can be finalised (spec.md §4.2
// "Type-lookup deferral").
type TypeLookupSide struct {
	Reader bool
	Writer bool
}

// Decidable reports whether either side needs a type lookup before the
// match can be finalised.
func (t TypeLookupSide) Decidable() bool { return !t.Reader && !t.Writer }

// TypeResolution describes, for a single endpoint, whether its type is
// resolved locally. HasTypeInfo false means "no XTypes metadata
// carried" — the matcher falls back to type-name equality.
type TypeResolution struct {
	HasTypeInfo bool
	Resolved    bool
	TypeNameEq  bool // whether the type names are byte-exact equal
}

// Match checks reader QoS R against writer QoS W, policy by policy, in
// the order spec.md §4.2 specifies, restricted to mask. It returns
// ReasonNone on success or the first failing PolicyID. A policy that is
// unset on one side is compared at its Default() value. Topic name is
// checked only when TopicName is in mask; a topic-name mismatch is
// reported with reason TopicName.
func Match(r, w *QoS, mask PolicyID) PolicyID {
	rd, wd := Default(), Default()
	copyPolicies(&rd, r, r.Present)
	copyPolicies(&wd, w, w.Present)
	r, w = &rd, &wd
	effective := mask

	if effective.Has(TopicName) && r.TopicNameValue != w.TopicNameValue {
		return TopicName
	}
	if effective.Has(Reliability) && r.ReliabilityValue.Kind > w.ReliabilityValue.Kind {
		return Reliability
	}
	if effective.Has(Durability) && r.DurabilityValue.Kind > w.DurabilityValue.Kind {
		return Durability
	}
	if effective.Has(Presentation) {
		rp, wp := r.PresentationValue, w.PresentationValue
		if rp.AccessScope > wp.AccessScope {
			return Presentation
		}
		if boolToInt(rp.CoherentAccess) > boolToInt(wp.CoherentAccess) {
			return Presentation
		}
		if boolToInt(rp.OrderedAccess) > boolToInt(wp.OrderedAccess) {
			return Presentation
		}
	}
	if effective.Has(Deadline) && r.DeadlineValue < w.DeadlineValue {
		return Deadline
	}
	if effective.Has(LatencyBudget) && r.LatencyBudgetValue < w.LatencyBudgetValue {
		return LatencyBudget
	}
	if effective.Has(Ownership) && r.OwnershipValue != w.OwnershipValue {
		return Ownership
	}
	if effective.Has(Liveliness) {
		if r.LivelinessValue.Kind > w.LivelinessValue.Kind {
			return Liveliness
		}
		if r.LivelinessValue.LeaseDuration < w.LivelinessValue.LeaseDuration {
			return Liveliness
		}
	}
	if effective.Has(DestinationOrder) && r.DestinationOrderValue > w.DestinationOrderValue {
		return DestinationOrder
	}
	if effective.Has(Partition) && !partitionsMatch(r.PartitionValue, w.PartitionValue) {
		return Partition
	}
	if effective.Has(DataRepresentation) && !dataRepresentationMatch(r.DataRepresentationValue, w.DataRepresentationValue) {
		return DataRepresentation
	}
	return ReasonNone
}

// MatchTypes resolves the TYPE_CONSISTENCY_ENFORCEMENT / type-name rule
// (spec.md §4.2 "Type matching") independently of Match, since it needs
// the type library's resolution state rather than pure QoS values.
// It returns (ok, needLookup, reason).
func MatchTypes(r *QoS, rRes, wRes TypeResolution) (bool, TypeLookupSide, PolicyID) {
	if !rRes.HasTypeInfo || !wRes.HasTypeInfo {
		if r.TypeConsistencyValue.ForceTypeValidation {
			return false, TypeLookupSide{}, TypeConsistencyEnforcement
		}
		if !rRes.TypeNameEq {
			return false, TypeLookupSide{}, TypeName
		}
		return true, TypeLookupSide{}, ReasonNone
	}
	var need TypeLookupSide
	if !rRes.Resolved {
		need.Reader = true
	}
	if !wRes.Resolved {
		need.Writer = true
	}
	if !need.Decidable() {
		return false, need, ReasonNone
	}
	if r.TypeConsistencyValue.Kind == AllowTypeCoercion {
		return true, TypeLookupSide{}, ReasonNone
	}
	if !rRes.TypeNameEq {
		return false, TypeLookupSide{}, TypeConsistencyEnforcement
	}
	return true, TypeLookupSide{}, ReasonNone
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// dataRepresentationMatch reports whether the writer's preferred (first)
// representation id appears anywhere in the reader's allowed list
// (spec.md §4.2 "Data representation matches if...").
func dataRepresentationMatch(r, w []int32) bool {
	if len(w) == 0 {
		return true
	}
	for _, id := range r {
		if id == w[0] {
			return true
		}
	}
	return len(r) == 0
}

// partitionsMatch implements ddsi_qosmatch.c's partitions_match_p: a
// side with no partitions is treated as holding the single empty
// partition name (spec.md §4.2, testable property 10).
func partitionsMatch(r, w []string) bool {
	if len(r) == 0 {
		return partitionsMatchDefault(w)
	}
	if len(w) == 0 {
		return partitionsMatchDefault(r)
	}
	for _, rp := range r {
		for _, wp := range w {
			if partitionPatmatch(rp, wp) || partitionPatmatch(wp, rp) {
				return true
			}
		}
	}
	return false
}

func partitionsMatchDefault(side []string) bool {
	if len(side) == 0 {
		return true
	}
	for _, p := range side {
		if partitionPatmatch(p, "") {
			return true
		}
	}
	return false
}

// partitionPatmatch mirrors partition_patmatch_p: pat may contain
// wildcards; when both pat and name contain wildcards they match only
// if the two strings are identical.
func partitionPatmatch(pat, name string) bool {
	if !isWildcardPartition(pat) {
		return pat == name
	}
	if isWildcardPartition(name) {
		return pat == name
	}
	return globMatch(pat, name)
}

func isWildcardPartition(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// globMatch implements glob-style '*'/'?' matching (ddsi_patmatch).
func globMatch(pat, name string) bool {
	return globMatchRunes([]rune(pat), []rune(name))
}

func globMatchRunes(pat, name []rune) bool {
	if len(pat) == 0 {
		return len(name) == 0
	}
	switch pat[0] {
	case '*':
		for i := 0; i <= len(name); i++ {
			if globMatchRunes(pat[1:], name[i:]) {
				return true
			}
		}
		return false
	case '?':
		if len(name) == 0 {
			return false
		}
		return globMatchRunes(pat[1:], name[1:])
	default:
		if len(name) == 0 || pat[0] != name[0] {
			return false
		}
		return globMatchRunes(pat[1:], name[1:])
	}
}
