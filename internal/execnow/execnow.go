// Package execnow decides which monitored objects an Execute now request may
// poll. Everything here is pure: no I/O, no shared state, and the same
// selection always yields the same Outcome.
package execnow

import (
	"github.com/HerbHall/pollnow/pkg/models"
)

// Eligible reports whether a single object can be polled on demand.
// Top-level objects are judged by their own type. Dependent objects are judged
// only by their immediate master's type, since polling them means re-polling
// the master.
func Eligible(obj *models.MonitoredObject) bool {
	if obj.IsDependent() {
		return obj.MasterType.Pollable()
	}
	return obj.Type.Pollable()
}

// Available reports whether the Execute now action should be offered for a
// selection. It is offered when at least one object is either a pollable
// top-level object or a dependent object, whose eligibility is only settled
// once its master is known.
func Available(selection []models.MonitoredObject) bool {
	for i := range selection {
		if selection[i].IsDependent() || selection[i].Type.Pollable() {
			return true
		}
	}
	return false
}

// Evaluate classifies a selection. Objects sharing an ID are counted once.
func Evaluate(selection []models.MonitoredObject) Outcome {
	objects := dedupe(selection)
	if len(objects) == 0 {
		return Outcome{Kind: KindRejected, Reason: ReasonEmptySelection}
	}

	var out Outcome
	for _, obj := range objects {
		if Eligible(&obj) {
			out.Eligible = append(out.Eligible, obj)
		} else {
			out.Filtered = append(out.Filtered, obj)
		}
	}

	switch {
	case len(out.Filtered) == 0:
		out.Kind = KindAccepted
	case len(out.Eligible) > 0:
		out.Kind = KindPartiallyAccepted
	default:
		out.Kind = KindRejected
		out.Reason = rejectionReason(out.Filtered)
	}
	return out
}

// rejectionReason picks the message for an all-filtered selection. Only a
// selection made entirely of dependents with unpollable masters blames the
// master; anything else blames the object type.
func rejectionReason(rejected []models.MonitoredObject) Reason {
	mastersOnly := true
	rulesOnly := true
	for i := range rejected {
		if !rejected[i].IsDependent() {
			mastersOnly = false
		}
		if rejected[i].Kind != models.KindDiscoveryRule {
			rulesOnly = false
		}
	}
	switch {
	case mastersOnly:
		return ReasonWrongMasterType
	case rulesOnly:
		return ReasonWrongDiscoveryRuleType
	default:
		return ReasonWrongItemType
	}
}

func dedupe(selection []models.MonitoredObject) []models.MonitoredObject {
	seen := make(map[string]bool, len(selection))
	out := make([]models.MonitoredObject, 0, len(selection))
	for _, obj := range selection {
		if obj.ID != "" {
			if seen[obj.ID] {
				continue
			}
			seen[obj.ID] = true
		}
		out = append(out, obj)
	}
	return out
}
