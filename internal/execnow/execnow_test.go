package execnow

import (
	"errors"
	"testing"

	"github.com/HerbHall/pollnow/pkg/models"
)

// fixtures mirrors the seeded "Host for execute now permissions" host.
func fixtures() map[string]models.MonitoredObject {
	item := func(id string, typ models.ObjectType) models.MonitoredObject {
		return models.MonitoredObject{ID: id, Name: id, Kind: models.KindItem, Type: typ, Enabled: true}
	}
	dep := func(id string, kind models.ObjectKind, masterType models.ObjectType) models.MonitoredObject {
		return models.MonitoredObject{
			ID: id, Name: id, Kind: kind, Type: models.TypeDependent,
			MasterID: "master-of-" + id, MasterType: masterType, Enabled: true,
		}
	}
	rule := func(id string, typ models.ObjectType) models.MonitoredObject {
		o := item(id, typ)
		o.Kind = models.KindDiscoveryRule
		return o
	}

	return map[string]models.MonitoredObject{
		"I1-lvl1-agent-num": item("I1-lvl1-agent-num", models.TypeAgent),
		"I1-lvl2-dep-log":   dep("I1-lvl2-dep-log", models.KindItem, models.TypeAgent),
		"I1-lvl3-dep-txt":   dep("I1-lvl3-dep-txt", models.KindItem, models.TypeAgent),
		"I2-lvl1-trap-num":  item("I2-lvl1-trap-num", models.TypeTrapper),
		"I2-lvl2-dep-log":   dep("I2-lvl2-dep-log", models.KindItem, models.TypeTrapper),
		"I2-lvl3-dep-txt":   dep("I2-lvl3-dep-txt", models.KindItem, models.TypeTrapper),
		"I3-web-dep":        dep("I3-web-dep", models.KindItem, models.TypeWeb),
		"I4-trap-log":       item("I4-trap-log", models.TypeTrapper),
		"I5-agent-txt":      item("I5-agent-txt", models.TypeAgent),
		"web-download":      item("web-download", models.TypeWeb),
		"DR1-agent":         rule("DR1-agent", models.TypeAgent),
		"DR2-trap":          rule("DR2-trap", models.TypeTrapper),
		"DR3-I1-dep-agent":  dep("DR3-I1-dep-agent", models.KindDiscoveryRule, models.TypeAgent),
		"DR4-I2-dep-trap":   dep("DR4-I2-dep-trap", models.KindDiscoveryRule, models.TypeTrapper),
		"DR5-web-dep":       dep("DR5-web-dep", models.KindDiscoveryRule, models.TypeWeb),
	}
}

func selection(t *testing.T, names ...string) []models.MonitoredObject {
	t.Helper()
	all := fixtures()
	out := make([]models.MonitoredObject, 0, len(names))
	for _, n := range names {
		obj, ok := all[n]
		if !ok {
			t.Fatalf("unknown fixture %q", n)
		}
		out = append(out, obj)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		objects  []string
		kind     Kind
		reason   Reason
		message  string
		accepted int
	}{
		{"agent item", []string{"I5-agent-txt"}, KindAccepted, ReasonNone, MessageSent, 1},
		{"agent master item", []string{"I1-lvl1-agent-num"}, KindAccepted, ReasonNone, MessageSent, 1},
		{"agent plus trapper", []string{"I5-agent-txt", "I4-trap-log"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"dependent on agent", []string{"I1-lvl2-dep-log"}, KindAccepted, ReasonNone, MessageSent, 1},
		{"dependent on trapper", []string{"I2-lvl2-dep-log"}, KindRejected, ReasonWrongMasterType, "Cannot send request: wrong master item type.", 0},
		{"dependent on web item", []string{"I3-web-dep"}, KindRejected, ReasonWrongMasterType, "Cannot send request: wrong master item type.", 0},
		{"trapper master and its dependent", []string{"I2-lvl1-trap-num", "I2-lvl3-dep-txt"}, KindRejected, ReasonWrongItemType, "Cannot send request: wrong item type.", 0},
		{"bad dependent and trapper", []string{"I2-lvl2-dep-log", "I4-trap-log"}, KindRejected, ReasonWrongItemType, "Cannot send request: wrong item type.", 0},
		{"good and bad dependents", []string{"I1-lvl3-dep-txt", "I2-lvl2-dep-log"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"two good dependents", []string{"I1-lvl3-dep-txt", "I1-lvl2-dep-log"}, KindAccepted, ReasonNone, MessageSent, 2},
		{"good dependent and agent", []string{"I1-lvl3-dep-txt", "I5-agent-txt"}, KindAccepted, ReasonNone, MessageSent, 2},
		{"good dependent and trapper", []string{"I1-lvl3-dep-txt", "I4-trap-log"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"bad dependent and web item", []string{"I2-lvl2-dep-log", "web-download"}, KindRejected, ReasonWrongItemType, "Cannot send request: wrong item type.", 0},
		{"good dependent and web item", []string{"I1-lvl3-dep-txt", "web-download"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"agent and web item", []string{"I5-agent-txt", "web-download"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"web dependent and web item", []string{"I3-web-dep", "web-download"}, KindRejected, ReasonWrongItemType, "Cannot send request: wrong item type.", 0},
		{"web dependent and agent", []string{"I3-web-dep", "I5-agent-txt"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},

		{"agent rule", []string{"DR1-agent"}, KindAccepted, ReasonNone, MessageSent, 1},
		{"agent and trapper rules", []string{"DR1-agent", "DR2-trap"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"rule dependent on agent", []string{"DR3-I1-dep-agent"}, KindAccepted, ReasonNone, MessageSent, 1},
		{"rule dependent on trapper", []string{"DR4-I2-dep-trap"}, KindRejected, ReasonWrongMasterType, "Cannot send request: wrong master item type.", 0},
		{"rule dependent on web item", []string{"DR5-web-dep"}, KindRejected, ReasonWrongMasterType, "Cannot send request: wrong master item type.", 0},
		{"trapper rule and bad dependent rule", []string{"DR2-trap", "DR4-I2-dep-trap"}, KindRejected, ReasonWrongDiscoveryRuleType, "Cannot send request: wrong discovery rule type.", 0},
		{"trapper rule only", []string{"DR2-trap"}, KindRejected, ReasonWrongDiscoveryRuleType, "Cannot send request: wrong discovery rule type.", 0},
		{"good and bad dependent rules", []string{"DR3-I1-dep-agent", "DR4-I2-dep-trap"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"good dependent rule and trapper rule", []string{"DR3-I1-dep-agent", "DR2-trap"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
		{"web dependent rule and agent rule", []string{"DR5-web-dep", "DR1-agent"}, KindPartiallyAccepted, ReasonNone, MessageSentFiltered, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(selection(t, tc.objects...))
			if got.Kind != tc.kind {
				t.Errorf("Kind = %q, want %q", got.Kind, tc.kind)
			}
			if got.Reason != tc.reason {
				t.Errorf("Reason = %q, want %q", got.Reason, tc.reason)
			}
			if got.Message() != tc.message {
				t.Errorf("Message() = %q, want %q", got.Message(), tc.message)
			}
			if got.ActedUpon() != tc.accepted {
				t.Errorf("ActedUpon() = %d, want %d", got.ActedUpon(), tc.accepted)
			}
			if len(got.Eligible)+len(got.Filtered) != len(tc.objects) {
				t.Errorf("eligible %d + filtered %d != selected %d", len(got.Eligible), len(got.Filtered), len(tc.objects))
			}
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	sel := selection(t, "I1-lvl3-dep-txt", "I2-lvl2-dep-log", "I5-agent-txt")
	first := Evaluate(sel)
	second := Evaluate(sel)
	if first.Kind != second.Kind || first.Reason != second.Reason || first.Message() != second.Message() {
		t.Errorf("outcomes differ: %+v vs %+v", first, second)
	}
	if first.ActedUpon() != second.ActedUpon() {
		t.Errorf("ActedUpon differs: %d vs %d", first.ActedUpon(), second.ActedUpon())
	}
}

func TestEvaluate_OrderIrrelevant(t *testing.T) {
	a := Evaluate(selection(t, "I2-lvl2-dep-log", "I4-trap-log"))
	b := Evaluate(selection(t, "I4-trap-log", "I2-lvl2-dep-log"))
	if a.Kind != b.Kind || a.Reason != b.Reason {
		t.Errorf("order changed outcome: %q/%q vs %q/%q", a.Kind, a.Reason, b.Kind, b.Reason)
	}
}

func TestEvaluate_DuplicatesCountOnce(t *testing.T) {
	got := Evaluate(selection(t, "I5-agent-txt", "I5-agent-txt", "I4-trap-log"))
	if got.Kind != KindPartiallyAccepted {
		t.Fatalf("Kind = %q, want %q", got.Kind, KindPartiallyAccepted)
	}
	if got.ActedUpon() != 1 {
		t.Errorf("ActedUpon() = %d, want 1", got.ActedUpon())
	}
}

func TestEvaluate_EmptySelection(t *testing.T) {
	got := Evaluate(nil)
	if got.Kind != KindRejected || got.Reason != ReasonEmptySelection {
		t.Fatalf("got %q/%q, want rejected/empty_selection", got.Kind, got.Reason)
	}
	if !errors.Is(got.Err(), ErrEmptySelection) {
		t.Errorf("Err() = %v, want ErrEmptySelection", got.Err())
	}
}

func TestEvaluate_MultiLevelChainUsesImmediateMaster(t *testing.T) {
	// The immediate master is itself dependent; only its type is consulted.
	obj := models.MonitoredObject{
		ID: "deep", Kind: models.KindItem, Type: models.TypeDependent,
		MasterID: "mid", MasterType: models.TypeDependent,
	}
	got := Evaluate([]models.MonitoredObject{obj})
	if got.Reason != ReasonWrongMasterType {
		t.Errorf("Reason = %q, want %q", got.Reason, ReasonWrongMasterType)
	}
}

func TestEvaluate_DependentOwnTypeIgnored(t *testing.T) {
	// A dependent object declared with a push-only type still follows its master.
	obj := models.MonitoredObject{
		ID: "odd", Kind: models.KindItem, Type: models.TypeTrapper,
		MasterID: "m", MasterType: models.TypeAgent,
	}
	if !Eligible(&obj) {
		t.Error("Eligible() = false, want true for agent master")
	}
}

func TestOutcome_Err(t *testing.T) {
	tests := []struct {
		reason   Reason
		sentinel error
	}{
		{ReasonWrongMasterType, ErrWrongMasterType},
		{ReasonWrongItemType, ErrWrongItemType},
		{ReasonWrongDiscoveryRuleType, ErrWrongDiscoveryRuleType},
	}
	for _, tc := range tests {
		err := Outcome{Kind: KindRejected, Reason: tc.reason}.Err()
		if !errors.Is(err, tc.sentinel) {
			t.Errorf("Err() for %q = %v, want wrapping %v", tc.reason, err, tc.sentinel)
		}
		var rej *RejectedError
		if !errors.As(err, &rej) || rej.Reason != tc.reason {
			t.Errorf("Err() for %q is not a *RejectedError with matching reason", tc.reason)
		}
	}

	if err := (Outcome{Kind: KindAccepted}).Err(); err != nil {
		t.Errorf("accepted Err() = %v, want nil", err)
	}
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		objects []string
		want    bool
	}{
		{"trapper only", []string{"I4-trap-log"}, false},
		{"trapper master only", []string{"I2-lvl1-trap-num"}, false},
		{"web item only", []string{"web-download"}, false},
		{"trapper and web item", []string{"I2-lvl1-trap-num", "web-download"}, false},
		{"trapper rule only", []string{"DR2-trap"}, false},
		{"agent item", []string{"I5-agent-txt"}, true},
		{"bad dependent", []string{"I2-lvl2-dep-log"}, true},
		{"web dependent", []string{"I3-web-dep"}, true},
		{"trapper and bad dependent", []string{"I4-trap-log", "I2-lvl2-dep-log"}, true},
		{"empty", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Available(selection(t, tc.objects...)); got != tc.want {
				t.Errorf("Available() = %v, want %v", got, tc.want)
			}
		})
	}
}
