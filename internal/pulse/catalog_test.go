package pulse

import (
	"context"
	"errors"
	"testing"

	"github.com/HerbHall/pollnow/pkg/models"
	"github.com/google/uuid"
)

func TestCatalogResolve(t *testing.T) {
	s := testStore(t)
	objs := fixtureSet(t, s)
	c := NewCatalog(s)

	a, dep := objs["I5-agent-txt"], objs["I2-lvl2-dep-log"]
	got, err := c.Resolve(context.Background(), []string{a.ID, dep.ID, a.ID})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (duplicates collapse)", len(got))
	}
	if got[0].ID != a.ID || got[1].ID != dep.ID {
		t.Errorf("order = [%s %s], want first-seen order", got[0].Name, got[1].Name)
	}
	if got[1].MasterType != models.TypeTrapper {
		t.Errorf("MasterType = %q, want trapper", got[1].MasterType)
	}
}

func TestCatalogResolve_Errors(t *testing.T) {
	s := testStore(t)
	objs := fixtureSet(t, s)
	orphan := insertTestObject(t, s, models.MonitoredObject{
		HostID:   objs["I5-agent-txt"].HostID,
		Name:     "orphan",
		Type:     models.TypeDependent,
		MasterID: uuid.NewString(),
	})
	c := NewCatalog(s)

	tests := []struct {
		name string
		ids  []string
		want error
	}{
		{"unknown id", []string{objs["I5-agent-txt"].ID, uuid.NewString()}, ErrObjectNotFound},
		{"missing master", []string{orphan.ID}, ErrMissingMaster},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Resolve(context.Background(), tc.ids)
			if !errors.Is(err, tc.want) {
				t.Errorf("Resolve() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCatalogResolve_Empty(t *testing.T) {
	got, err := NewCatalog(testStore(t)).Resolve(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Resolve(nil) = %v, %v; want empty", got, err)
	}
}
