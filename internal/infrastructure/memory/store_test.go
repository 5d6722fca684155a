package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

func seedDistrict(t *testing.T, s *Store, code, name string) *domain.District {
	t.Helper()
	d := &domain.District{ID: types.NewDeterministicID("district", code), Code: code, Name: name}
	if _, err := s.UpsertDistrict(context.Background(), d); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return d
}

func seedActor(t *testing.T, s *Store, role domain.Role, district *types.ID) *domain.Actor {
	t.Helper()
	a, err := domain.NewActor("Tester", types.NewID().String()+"@example.com", "hash", role, district)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := s.CreateActor(context.Background(), a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return a
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	reporter := seedActor(t, s, domain.RoleCitizen, &d.ID)

	incident, _ := domain.NewIncident(reporter, d.ID, domain.IncidentDraft{Type: "flood"})
	boom := fmt.Errorf("boom")

	err := s.WithinTx(ctx, func(tx domain.Tx) error {
		if err := tx.CreateIncident(ctx, incident); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("Expected boom, got %v", err)
	}

	if _, err := s.GetIncident(ctx, incident.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected incident to be rolled back, got %v", err)
	}
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	reporter := seedActor(t, s, domain.RoleCitizen, &d.ID)
	incident, _ := domain.NewIncident(reporter, d.ID, domain.IncidentDraft{Type: "flood"})

	err := s.WithinTx(ctx, func(tx domain.Tx) error {
		return tx.CreateIncident(ctx, incident)
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := s.GetIncident(ctx, incident.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.DistrictName != "Agsalin" {
		t.Errorf("Expected district name Agsalin, got %q", got.DistrictName)
	}
	if len(got.PullEvents()) != 0 {
		t.Error("Expected stored incident to carry no events")
	}
}

func TestReferentialIntegrity(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	reporter := seedActor(t, s, domain.RoleCitizen, &d.ID)

	orphan, _ := domain.NewIncident(reporter, types.NewID(), domain.IncidentDraft{Type: "fire"})
	if err := s.CreateIncident(ctx, orphan); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found for unknown district, got %v", err)
	}

	n := &domain.Notification{ID: types.NewID(), IncidentID: types.NewID(), TargetRole: domain.RoleMDRRMO}
	if err := s.CreateNotification(ctx, n); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found for unknown incident, got %v", err)
	}

	report, _ := domain.NewAssignmentReport(types.NewID(), types.NewID(), "content", "", "")
	if err := s.CreateReport(ctx, report); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found for unknown incident, got %v", err)
	}
}

func TestDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, _ := domain.NewActor("A", "same@example.com", "hash", domain.RoleCitizen, nil)
	b, _ := domain.NewActor("B", "SAME@example.com", "hash", domain.RoleCitizen, nil)
	if err := s.CreateActor(ctx, a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := s.CreateActor(ctx, b); !errors.Is(err, errors.ErrConflict) {
		t.Errorf("Expected conflict, got %v", err)
	}

	got, err := s.GetActorByEmail(ctx, " Same@Example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("Expected actor %s, got %s", a.ID, got.ID)
	}
}

func TestUpsertDistrictIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedDistrict(t, s, "GLR-BAL", "Balete")

	inserted, err := s.UpsertDistrict(ctx, &domain.District{ID: types.NewID(), Code: "GLR-BAL", Name: "Balete"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if inserted {
		t.Error("Expected duplicate code to be skipped")
	}
	if n, _ := s.CountDistricts(ctx); n != 1 {
		t.Errorf("Expected 1 district, got %d", n)
	}
}

func TestListIncidentsOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	d1 := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	d2 := seedDistrict(t, s, "GLR-BAL", "Balete")
	reporter := seedActor(t, s, domain.RoleCitizen, nil)

	base := time.Now().UTC()
	for n, district := range []types.ID{d1.ID, d2.ID, d1.ID} {
		i, _ := domain.NewIncident(reporter, district, domain.IncidentDraft{Type: fmt.Sprintf("t%d", n)})
		i.ReportedAt = base.Add(time.Duration(n) * time.Minute)
		if err := s.CreateIncident(ctx, i); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	all, _ := s.ListIncidents(ctx, domain.IncidentFilter{})
	if len(all) != 3 {
		t.Fatalf("Expected 3 incidents, got %d", len(all))
	}
	if all[0].Type != "t2" || all[2].Type != "t0" {
		t.Errorf("Expected newest first, got %s..%s", all[0].Type, all[2].Type)
	}

	inD1, _ := s.ListIncidents(ctx, domain.IncidentFilter{DistrictID: &d1.ID, Limit: 1})
	if len(inD1) != 1 || inD1[0].Type != "t2" {
		t.Errorf("Expected latest district incident only, got %v", inD1)
	}

	active, _ := s.CountIncidents(ctx, domain.IncidentFilter{Statuses: domain.ActiveStatuses})
	if active != 3 {
		t.Errorf("Expected 3 active incidents, got %d", active)
	}
}

func TestListIncidentsSameTimestampIsStable(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	reporter := seedActor(t, s, domain.RoleCitizen, nil)

	at := time.Now().UTC()
	for n := 0; n < 8; n++ {
		i, _ := domain.NewIncident(reporter, d.ID, domain.IncidentDraft{Type: fmt.Sprintf("t%d", n)})
		i.ReportedAt = at
		if err := s.CreateIncident(ctx, i); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	first, _ := s.ListIncidents(ctx, domain.IncidentFilter{})
	for k := 1; k < len(first); k++ {
		if first[k-1].ID > first[k].ID {
			t.Fatalf("Expected ID tie-break order, got %s before %s", first[k-1].ID, first[k].ID)
		}
	}
	for run := 0; run < 5; run++ {
		again, _ := s.ListIncidents(ctx, domain.IncidentFilter{})
		for k := range again {
			if again[k].ID != first[k].ID {
				t.Fatalf("Expected the same order on every call, position %d differs", k)
			}
		}
	}
}

func TestLockIncident(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	reporter := seedActor(t, s, domain.RoleCitizen, &d.ID)
	incident, _ := domain.NewIncident(reporter, d.ID, domain.IncidentDraft{Type: "fire"})
	if err := s.CreateIncident(ctx, incident); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err := s.WithinTx(ctx, func(tx domain.Tx) error {
		locked, err := tx.LockIncident(ctx, incident.ID)
		if err != nil {
			return err
		}
		shared, err := tx.ShareLockIncident(ctx, incident.ID)
		if err != nil {
			return err
		}
		if locked.ID != incident.ID || shared.DistrictName != "Agsalin" {
			t.Errorf("Expected locked incident with district name, got %+v", shared)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := s.LockIncident(ctx, types.NewID()); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := s.ShareLockIncident(ctx, types.NewID()); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestHasOpenAssignment(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	reporter := seedActor(t, s, domain.RoleCitizen, &d.ID)

	r, _ := domain.NewResponder(d.ID, domain.ResponderProfile{FirstName: "A", LastName: "B"})
	if err := s.CreateResponder(ctx, r); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	i, _ := domain.NewIncident(reporter, d.ID, domain.IncidentDraft{Type: "flood"})
	if err := s.CreateIncident(ctx, i); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if open, _ := s.HasOpenAssignment(ctx, r.ID, nil); open {
		t.Error("Expected no open assignment before any report")
	}

	report, _ := domain.NewAssignmentReport(i.ID, r.ID, "on site", "", "")
	if err := s.CreateReport(ctx, report); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if open, _ := s.HasOpenAssignment(ctx, r.ID, nil); !open {
		t.Error("Expected open assignment after report")
	}
	if open, _ := s.HasOpenAssignment(ctx, r.ID, &i.ID); open {
		t.Error("Expected excluded incident to be ignored")
	}

	i.Status = domain.StatusClosed
	if err := s.UpdateIncidentStatus(ctx, i); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if open, _ := s.HasOpenAssignment(ctx, r.ID, nil); open {
		t.Error("Expected closed incident not to count")
	}

	on, _ := s.RespondersOnIncident(ctx, i.ID)
	if len(on) != 1 || on[0].ID != r.ID {
		t.Errorf("Expected responder on incident, got %v", on)
	}
}

func TestResponderOwnershipIsUnique(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	owner := seedActor(t, s, domain.RoleResponder, nil)

	first, _ := domain.NewResponder(d.ID, domain.ResponderProfile{FirstName: "A", LastName: "B"})
	second, _ := domain.NewResponder(d.ID, domain.ResponderProfile{FirstName: "C", LastName: "D"})
	_ = s.CreateResponder(ctx, first)
	_ = s.CreateResponder(ctx, second)

	first.ActorID = owner.ID.Ptr()
	if err := s.UpdateResponder(ctx, first); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second.ActorID = owner.ID.Ptr()
	if err := s.UpdateResponder(ctx, second); !errors.Is(err, errors.ErrConflict) {
		t.Errorf("Expected conflict, got %v", err)
	}

	got, err := s.GetResponderByActor(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("Expected responder %s, got %s", first.ID, got.ID)
	}
}

func TestListNotificationsByTarget(t *testing.T) {
	ctx := context.Background()
	s := New()
	d1 := seedDistrict(t, s, "GLR-AGS", "Agsalin")
	d2 := seedDistrict(t, s, "GLR-BAL", "Balete")
	reporter := seedActor(t, s, domain.RoleCitizen, nil)
	i, _ := domain.NewIncident(reporter, d1.ID, domain.IncidentDraft{Type: "flood"})
	_ = s.CreateIncident(ctx, i)

	for _, n := range []domain.Notification{
		{ID: types.NewID(), IncidentID: i.ID, TargetRole: domain.RoleOfficial, TargetDistrict: &d1.ID},
		{ID: types.NewID(), IncidentID: i.ID, TargetRole: domain.RoleOfficial, TargetDistrict: &d2.ID},
		{ID: types.NewID(), IncidentID: i.ID, TargetRole: domain.RoleOfficial},
		{ID: types.NewID(), IncidentID: i.ID, TargetRole: domain.RoleMDRRMO, TargetDistrict: &d2.ID},
	} {
		n := n
		if err := s.CreateNotification(ctx, &n); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	got, _ := s.ListNotifications(ctx, domain.NotificationFilter{TargetRole: domain.RoleOfficial, TargetDistrict: &d1.ID})
	if len(got) != 2 {
		t.Errorf("Expected 2 notifications for district official, got %d", len(got))
	}
	all, _ := s.ListNotifications(ctx, domain.NotificationFilter{TargetRole: domain.RoleMDRRMO, AllDistricts: true})
	if len(all) != 1 {
		t.Errorf("Expected 1 mdrrmo notification, got %d", len(all))
	}
}
