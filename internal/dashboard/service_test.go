package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/infrastructure/memory"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

type fixture struct {
	store *memory.Store
	agg   *Aggregator
	north types.ID
	south types.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	f := &fixture{store: store}
	for code, id := range map[string]*types.ID{"GLR-NRA": &f.north, "GLR-SMA": &f.south} {
		*id = types.NewDeterministicID("district", code)
		if _, err := store.UpsertDistrict(ctx, &domain.District{ID: *id, Code: code, Name: code}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	gate, err := access.NewGate(config.AccessConfig{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	f.agg = NewAggregator(store, gate, nil)
	return f
}

func (f *fixture) actor(t *testing.T, role domain.Role, district *types.ID) *domain.Actor {
	t.Helper()
	a, err := domain.NewActor(string(role), types.NewID().String()+"@example.com", "hash", role, district)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := f.store.CreateActor(context.Background(), a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return a
}

func (f *fixture) incident(t *testing.T, reporter *domain.Actor, district types.ID, status string) {
	t.Helper()
	i, err := domain.NewIncident(reporter, district, domain.IncidentDraft{Type: "fire"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := i.SetStatus(status, reporter, false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := f.store.CreateIncident(context.Background(), i); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestBuildStats(t *testing.T) {
	f := newFixture(t)
	citizen := f.actor(t, domain.RoleCitizen, &f.north)

	statuses := []string{"reported", "verified", "responding", "resolved", "closed", "reported", "reported"}
	for _, st := range statuses {
		f.incident(t, citizen, f.north, st)
	}

	view, err := f.agg.Build(context.Background(), citizen)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := Stats{TotalIncidents: 7, ActiveIncidents: 5, ResolvedIncidents: 2, Districts: 2}
	if view.Stats != want {
		t.Errorf("Expected stats %+v, got %+v", want, view.Stats)
	}
	if len(view.RecentIncidents) != 5 {
		t.Errorf("Expected 5 recent incidents, got %d", len(view.RecentIncidents))
	}
	if view.RecentIncidents[0].DistrictName != "GLR-NRA" {
		t.Errorf("Expected district name on recent incidents, got %q", view.RecentIncidents[0].DistrictName)
	}
	if view.Districts != nil || view.District != nil || view.Responder != nil {
		t.Errorf("Expected no role extensions for citizen, got %+v", view)
	}
}

func TestBuildRoleExtensions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	citizen := f.actor(t, domain.RoleCitizen, &f.north)
	f.incident(t, citizen, f.north, "reported")
	f.incident(t, citizen, f.south, "reported")
	f.incident(t, citizen, f.south, "verified")

	t.Run("mdrrmo sees districts", func(t *testing.T) {
		view, err := f.agg.Build(ctx, f.actor(t, domain.RoleMDRRMO, nil))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(view.Districts) != 2 {
			t.Errorf("Expected 2 districts, got %d", len(view.Districts))
		}
	})

	t.Run("official sees own district", func(t *testing.T) {
		view, err := f.agg.Build(ctx, f.actor(t, domain.RoleOfficial, &f.south))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if view.District == nil || view.District.ID != f.south {
			t.Fatalf("Expected own district, got %+v", view.District)
		}
		if view.DistrictIncidents == nil || *view.DistrictIncidents != 2 {
			t.Errorf("Expected 2 district incidents, got %v", view.DistrictIncidents)
		}
		if view.Districts != nil {
			t.Error("Expected no district list for official")
		}
	})

	t.Run("responder sees own profile", func(t *testing.T) {
		actor := f.actor(t, domain.RoleResponder, nil)
		r, _ := domain.NewResponder(f.north, domain.ResponderProfile{FirstName: "Andres", LastName: "Bonifacio"})
		r.ActorID = actor.ID.Ptr()
		if err := f.store.CreateResponder(ctx, r); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		view, err := f.agg.Build(ctx, actor)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if view.Responder == nil || view.Responder.ID != r.ID {
			t.Errorf("Expected own responder profile, got %+v", view.Responder)
		}
		if view.Reports == nil {
			t.Error("Expected empty report list, got nil")
		}
	})

	t.Run("unclaimed responder", func(t *testing.T) {
		view, err := f.agg.Build(ctx, f.actor(t, domain.RoleResponder, nil))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if view.Responder != nil {
			t.Errorf("Expected no profile, got %+v", view.Responder)
		}
	})
}

func TestBuildUnauthenticated(t *testing.T) {
	f := newFixture(t)

	if _, err := f.agg.Build(context.Background(), nil); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("Expected unauthenticated for nil actor, got %v", err)
	}

	ghost, _ := domain.NewActor("ghost", "ghost@example.com", "hash", domain.RoleCitizen, nil)
	if _, err := f.agg.Build(context.Background(), ghost); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("Expected unauthenticated for unknown actor, got %v", err)
	}
}

func TestGaugeRefresher(t *testing.T) {
	f := newFixture(t)

	if _, err := NewGaugeRefresher(f.agg, "every now and then", time.Second); err == nil {
		t.Error("Expected error for invalid spec")
	}

	r, err := NewGaugeRefresher(f.agg, "@every 1h", time.Second)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := r.Refresh(context.Background()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	r.Start()
	r.Stop()
}

func TestHandler(t *testing.T) {
	f := newFixture(t)
	routes := NewHandler(f.agg).Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(access.WithActor(req.Context(), f.actor(t, domain.RoleCitizen, nil)))
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}
