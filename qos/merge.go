// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package qos

// MergeMissing copies from src into dst only those policies whose bit is
// in mask and absent from dst.Present (spec.md §4.2 "merge_missing").
// Values are deep-copied (aliased buffers are not shared with src), and
// any bit that is copied is cleared from the resulting Aliased mask.
func MergeMissing(dst *QoS, src *QoS, mask PolicyID) {
	toCopy := mask &^ dst.Present & src.Present
	if toCopy == 0 {
		return
	}
	copyPolicies(dst, src, toCopy)
	dst.Present |= toCopy
	dst.Aliased &^= toCopy
}

// Copy deep-copies src into dst in full, dropping any Aliased bits in the
// result (spec.md §4.2 "copy"). Any policy dst held that src doesn't is
// cleared, so dst becomes bit-for-bit src afterwards (Delta(dst,src,~0)==0).
func Copy(dst *QoS, src *QoS) {
	*dst = QoS{}
	copyPolicies(dst, src, src.Present)
	dst.Present = src.Present
	dst.Aliased = 0
}

// Delta returns the bitmask of policies whose presence differs or whose
// values differ between a and b, restricted to mask (spec.md §4.2 "delta").
func Delta(a, b *QoS, mask PolicyID) PolicyID {
	var d PolicyID
	for p := PolicyID(1); p != 0 && p <= Property; p <<= 1 {
		if mask&p == 0 {
			continue
		}
		aSet, bSet := a.Present.Has(p), b.Present.Has(p)
		if aSet != bSet {
			d |= p
			continue
		}
		if aSet && !valueEqual(a, b, p) {
			d |= p
		}
	}
	return d
}

// copyPolicies copies the value fields named by bits from src into dst.
// It does not touch dst.Present/Aliased; callers set those afterwards.
func copyPolicies(dst, src *QoS, bits PolicyID) {
	if bits.Has(TopicName) {
		dst.TopicNameValue = src.TopicNameValue
	}
	if bits.Has(TypeName) {
		dst.TypeNameValue = src.TypeNameValue
	}
	if bits.Has(Presentation) {
		dst.PresentationValue = src.PresentationValue
	}
	if bits.Has(Partition) {
		dst.PartitionValue = append([]string(nil), src.PartitionValue...)
	}
	if bits.Has(GroupData) {
		dst.GroupDataValue = append([]byte(nil), src.GroupDataValue...)
	}
	if bits.Has(TopicData) {
		dst.TopicDataValue = append([]byte(nil), src.TopicDataValue...)
	}
	if bits.Has(Durability) {
		dst.DurabilityValue = src.DurabilityValue
	}
	if bits.Has(DurabilityService) {
		dst.DurabilityServiceValue = src.DurabilityServiceValue
	}
	if bits.Has(Deadline) {
		dst.DeadlineValue = src.DeadlineValue
	}
	if bits.Has(LatencyBudget) {
		dst.LatencyBudgetValue = src.LatencyBudgetValue
	}
	if bits.Has(Liveliness) {
		dst.LivelinessValue = src.LivelinessValue
	}
	if bits.Has(Reliability) {
		dst.ReliabilityValue = src.ReliabilityValue
	}
	if bits.Has(DestinationOrder) {
		dst.DestinationOrderValue = src.DestinationOrderValue
	}
	if bits.Has(History) {
		dst.HistoryValue = src.HistoryValue
	}
	if bits.Has(ResourceLimits) {
		dst.ResourceLimitsValue = src.ResourceLimitsValue
	}
	if bits.Has(TransportPriority) {
		dst.TransportPriorityValue = src.TransportPriorityValue
	}
	if bits.Has(Lifespan) {
		dst.LifespanValue = src.LifespanValue
	}
	if bits.Has(UserData) {
		dst.UserDataValue = append([]byte(nil), src.UserDataValue...)
	}
	if bits.Has(Ownership) {
		dst.OwnershipValue = src.OwnershipValue
	}
	if bits.Has(OwnershipStrength) {
		dst.OwnershipStrengthValue = src.OwnershipStrengthValue
	}
	if bits.Has(TimeBasedFilter) {
		dst.TimeBasedFilterValue = src.TimeBasedFilterValue
	}
	if bits.Has(WriterDataLifecycle) {
		dst.WriterDataLifecycleValue = src.WriterDataLifecycleValue
	}
	if bits.Has(ReaderDataLifecycle) {
		dst.ReaderDataLifecycleValue = src.ReaderDataLifecycleValue
	}
	if bits.Has(IgnoreLocal) {
		dst.IgnoreLocalValue = src.IgnoreLocalValue
	}
	if bits.Has(EntityFactory) {
		dst.EntityFactoryAutoenable = src.EntityFactoryAutoenable
	}
	if bits.Has(TypeConsistencyEnforcement) {
		dst.TypeConsistencyValue = src.TypeConsistencyValue
	}
	if bits.Has(TypeInformation) {
		dst.TypeInformationValue = src.TypeInformationValue
		dst.TypeInformationValue.Blob = append([]byte(nil), src.TypeInformationValue.Blob...)
	}
	if bits.Has(DataRepresentation) {
		dst.DataRepresentationValue = append([]int32(nil), src.DataRepresentationValue...)
	}
	if bits.Has(EntityName) {
		dst.EntityNameValue = src.EntityNameValue
	}
	if bits.Has(Property) {
		dst.PropertyValue = clonePropertyValue(src.PropertyValue)
	}
}

func clonePropertyValue(v PropertyValue) PropertyValue {
	out := PropertyValue{}
	if v.Strings != nil {
		out.Strings = make(map[string]string, len(v.Strings))
		for k, s := range v.Strings {
			out.Strings[k] = s
		}
	}
	if v.Binary != nil {
		out.Binary = make(map[string][]byte, len(v.Binary))
		for k, b := range v.Binary {
			out.Binary[k] = append([]byte(nil), b...)
		}
	}
	return out
}

func valueEqual(a, b *QoS, p PolicyID) bool {
	switch p {
	case TopicName:
		return a.TopicNameValue == b.TopicNameValue
	case TypeName:
		return a.TypeNameValue == b.TypeNameValue
	case Presentation:
		return a.PresentationValue == b.PresentationValue
	case Partition:
		return stringSliceEqual(a.PartitionValue, b.PartitionValue)
	case GroupData:
		return byteSliceEqual(a.GroupDataValue, b.GroupDataValue)
	case TopicData:
		return byteSliceEqual(a.TopicDataValue, b.TopicDataValue)
	case Durability:
		return a.DurabilityValue == b.DurabilityValue
	case DurabilityService:
		return a.DurabilityServiceValue == b.DurabilityServiceValue
	case Deadline:
		return a.DeadlineValue == b.DeadlineValue
	case LatencyBudget:
		return a.LatencyBudgetValue == b.LatencyBudgetValue
	case Liveliness:
		return a.LivelinessValue == b.LivelinessValue
	case Reliability:
		return a.ReliabilityValue == b.ReliabilityValue
	case DestinationOrder:
		return a.DestinationOrderValue == b.DestinationOrderValue
	case History:
		return a.HistoryValue == b.HistoryValue
	case ResourceLimits:
		return a.ResourceLimitsValue == b.ResourceLimitsValue
	case TransportPriority:
		return a.TransportPriorityValue == b.TransportPriorityValue
	case Lifespan:
		return a.LifespanValue == b.LifespanValue
	case UserData:
		return byteSliceEqual(a.UserDataValue, b.UserDataValue)
	case Ownership:
		return a.OwnershipValue == b.OwnershipValue
	case OwnershipStrength:
		return a.OwnershipStrengthValue == b.OwnershipStrengthValue
	case TimeBasedFilter:
		return a.TimeBasedFilterValue == b.TimeBasedFilterValue
	case WriterDataLifecycle:
		return a.WriterDataLifecycleValue == b.WriterDataLifecycleValue
	case ReaderDataLifecycle:
		return a.ReaderDataLifecycleValue == b.ReaderDataLifecycleValue
	case IgnoreLocal:
		return a.IgnoreLocalValue == b.IgnoreLocalValue
	case EntityFactory:
		return a.EntityFactoryAutoenable == b.EntityFactoryAutoenable
	case TypeConsistencyEnforcement:
		return a.TypeConsistencyValue == b.TypeConsistencyValue
	case TypeInformation:
		return a.TypeInformationValue.MinimalHash == b.TypeInformationValue.MinimalHash &&
			a.TypeInformationValue.CompleteHash == b.TypeInformationValue.CompleteHash
	case DataRepresentation:
		return int32SliceEqual(a.DataRepresentationValue, b.DataRepresentationValue)
	case EntityName:
		return a.EntityNameValue == b.EntityNameValue
	case Property:
		return propertyEqual(a.PropertyValue, b.PropertyValue)
	default:
		return true
	}
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func byteSliceEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func int32SliceEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func propertyEqual(a, b PropertyValue) bool {
	if len(a.Strings) != len(b.Strings) || len(a.Binary) != len(b.Binary) {
		return false
	}
	for k, v := range a.Strings {
		if bv, ok := b.Strings[k]; !ok || bv != v {
			return false
		}
	}
	for k := range a.Binary {
		if _, ok := b.Binary[k]; !ok {
			return false
		}
	}
	return true
}
