package domain

import (
	"testing"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

func TestNewActor(t *testing.T) {
	district := types.NewID()

	tests := []struct {
		name     string
		role     Role
		district *types.ID
		wantErr  bool
	}{
		{"Citizen without district", RoleCitizen, nil, false},
		{"Official with district", RoleOfficial, &district, false},
		{"Official without district", RoleOfficial, nil, true},
		{"Unknown role", Role("mayor"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewActor("Maria", "  Maria@Example.COM ", "hash", tt.role, tt.district)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if a.Email != "maria@example.com" {
				t.Errorf("Expected normalized email, got %q", a.Email)
			}
		})
	}
}

func TestNewResponderDefaults(t *testing.T) {
	district := types.NewID()

	r, err := NewResponder(district, ResponderProfile{FirstName: "Jose", LastName: "Rizal"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Position != "Responder" {
		t.Errorf("Expected position Responder, got %s", r.Position)
	}
	if r.Specialization != "General" {
		t.Errorf("Expected specialization General, got %s", r.Specialization)
	}
	if r.Status != ResponderAvailable {
		t.Errorf("Expected status available, got %s", r.Status)
	}
	if r.IsClaimed() {
		t.Error("Expected unclaimed responder")
	}
}

func TestNewResponderStatus(t *testing.T) {
	district := types.NewID()

	if _, err := NewResponder(district, ResponderProfile{FirstName: "A", LastName: "B", Status: "on-duty"}); !errors.Is(err, errors.ErrInvalidStatus) {
		t.Errorf("Expected invalid status for on-duty, got %v", err)
	}
	if _, err := NewResponder(district, ResponderProfile{FirstName: "A", LastName: "B", Status: "asleep"}); !errors.Is(err, errors.ErrInvalidStatus) {
		t.Errorf("Expected invalid status for unknown value, got %v", err)
	}
	r, err := NewResponder(district, ResponderProfile{FirstName: "A", LastName: "B", Status: "off-duty"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Status != ResponderOffDuty {
		t.Errorf("Expected off-duty, got %s", r.Status)
	}
}

func TestResponderFullName(t *testing.T) {
	tests := []struct {
		first, middle, last string
		want                string
	}{
		{"Andres", "", "Bonifacio", "Andres Bonifacio"},
		{"Emilio", "Famy", "Aguinaldo", "Emilio F. Aguinaldo"},
		{"Ñora", "Ñino", "Santos", "Ñora Ñ. Santos"},
	}
	for _, tt := range tests {
		r := &Responder{FirstName: tt.first, MiddleName: tt.middle, LastName: tt.last}
		if got := r.FullName(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestNewResource(t *testing.T) {
	district := types.NewID()
	zero := 0
	negative := -3

	r, err := NewResource(district, ResourceSpec{Name: "Rescue boat", Type: "vehicle"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Quantity != 1 || r.Unit != "unit" || r.Condition != ConditionGood || r.Status != ResourceAvailable {
		t.Errorf("Expected defaults 1/unit/good/available, got %d/%s/%s/%s", r.Quantity, r.Unit, r.Condition, r.Status)
	}

	if r, err := NewResource(district, ResourceSpec{Name: "Sandbags", Type: "equipment", Quantity: &zero}); err != nil || r.Quantity != 0 {
		t.Errorf("Expected zero quantity to be accepted, got %v", err)
	}
	if _, err := NewResource(district, ResourceSpec{Name: "Rice", Type: "food", Quantity: &negative}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Expected validation error for negative quantity, got %v", err)
	}
	if _, err := NewResource(district, ResourceSpec{Name: "Tent", Type: "camping"}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Expected validation error for bad type, got %v", err)
	}
	if _, err := NewResource(district, ResourceSpec{Name: "Tent", Type: "shelter", Condition: "broken"}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Expected validation error for bad condition, got %v", err)
	}
}

func TestNotificationVisibleTo(t *testing.T) {
	d1, d2 := types.NewID(), types.NewID()

	alert := &Notification{TargetRole: RoleMDRRMO, TargetDistrict: &d1}
	update := &Notification{TargetRole: RoleOfficial, TargetDistrict: &d1}
	broadcast := &Notification{TargetRole: RoleCitizen}

	tests := []struct {
		name  string
		n     *Notification
		actor *Actor
		want  bool
	}{
		{"mdrrmo sees any district", alert, testActor(RoleMDRRMO, nil), true},
		{"official of district", update, testActor(RoleOfficial, &d1), true},
		{"official elsewhere", update, testActor(RoleOfficial, &d2), false},
		{"wrong role", alert, testActor(RoleOfficial, &d1), false},
		{"district-less broadcast", broadcast, testActor(RoleCitizen, &d2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.VisibleTo(tt.actor); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewChatMessage(t *testing.T) {
	sender := testActor(RoleResponder, nil)
	incident := types.NewID()

	m, err := NewChatMessage(incident, sender, "  On the way  ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Body != "On the way" {
		t.Errorf("Expected trimmed body, got %q", m.Body)
	}
	if _, err := NewChatMessage(incident, sender, "   "); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestNewAssignmentReport(t *testing.T) {
	if _, err := NewAssignmentReport(types.NewID(), types.NewID(), "", "", ""); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	r, err := NewAssignmentReport(types.NewID(), types.NewID(), "Evacuated 3 families", "evacuation", "1 truck")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.ID.IsZero() || r.CreatedAt.IsZero() {
		t.Error("Expected ID and timestamp to be set")
	}
}
