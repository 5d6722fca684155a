package internal

import (
	"context"
	"testing"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/account"
	"github.com/gloria-mdrrmo/sigurado/internal/dashboard"
	"github.com/gloria-mdrrmo/sigurado/internal/district"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/incident"
	"github.com/gloria-mdrrmo/sigurado/internal/infrastructure/memory"
	"github.com/gloria-mdrrmo/sigurado/internal/notification"
	"github.com/gloria-mdrrmo/sigurado/internal/responder"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/auth"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/events"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

type platform struct {
	accounts      *account.Service
	incidents     *incident.Service
	notifications *notification.Service
	responders    *responder.Service
	districts     *district.Service
	dashboard     *dashboard.Aggregator
}

func newPlatform(t *testing.T) *platform {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	if _, err := district.Seed(ctx, store, nil); err != nil {
		t.Fatalf("Failed to seed districts: %v", err)
	}

	gate, err := access.NewGate(config.AccessConfig{}, nil)
	if err != nil {
		t.Fatalf("Failed to build gate: %v", err)
	}
	authCfg := config.AuthConfig{
		JWTSecret:        "integration-secret",
		Issuer:           "sigurado",
		TokenTTL:         time.Hour,
		BcryptCost:       4,
		RegistrableRoles: []string{"citizen", "responder", "official", "mdrrmo"},
	}

	dispatcher := events.NewDispatcher(nil)
	p := &platform{
		accounts:      account.NewService(store, gate, auth.NewTokens(authCfg), authCfg, nil),
		incidents:     incident.NewService(store, gate, dispatcher, config.IncidentConfig{FallbackDistrictCode: "GLR-POB"}, nil),
		notifications: notification.NewService(store, gate),
		responders:    responder.NewService(store, gate, dispatcher, config.CoordinationConfig{ReleaseOnClose: true}, nil),
		districts:     district.NewService(store, gate, nil),
		dashboard:     dashboard.NewAggregator(store, gate, nil),
	}
	notification.NewFanout(store, config.NotificationConfig{}, nil).Register(dispatcher)
	p.responders.Register(dispatcher)
	return p
}

func (p *platform) register(t *testing.T, name, role string, districtID *types.ID) *domain.Actor {
	t.Helper()
	res, err := p.accounts.Register(context.Background(), account.RegisterInput{
		Name:       name,
		Email:      name + "@gloria.gov.ph",
		Password:   "secret1",
		Role:       role,
		DistrictID: districtID,
	})
	if err != nil {
		t.Fatalf("Failed to register %s: %v", name, err)
	}
	return res.Data.Actor
}

// TestFloodIncidentWorkflow follows one incident from the citizen report
// to closure, with a responder on scene in between
func TestFloodIncidentWorkflow(t *testing.T) {
	ctx := context.Background()
	p := newPlatform(t)
	narra := types.NewDeterministicID("district", "GLR-NRA")

	citizen := p.register(t, "resident", "citizen", &narra)
	official := p.register(t, "kapitan", "official", &narra)
	mdrrmo := p.register(t, "operations", "mdrrmo", nil)
	field := p.register(t, "rescuer", "responder", nil)

	// 1. Citizen reports a flood in their barangay
	created, err := p.incidents.Create(ctx, citizen, incident.CreateInput{
		Type:             "flood",
		Severity:         "high",
		Location:         "Purok 3, near the river",
		AffectedFamilies: 12,
	})
	if err != nil {
		t.Fatalf("Failed to report incident: %v", err)
	}
	flood := created.Data
	if flood.Status != domain.StatusReported || flood.DistrictID != narra {
		t.Fatalf("Expected reported incident in Narra, got %s in %s", flood.Status, flood.DistrictID)
	}

	// 2. The MDRRMO office is alerted
	alerts, err := p.notifications.ListForActor(ctx, mdrrmo, 0)
	if err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if len(alerts) != 1 || alerts[0].IncidentID != flood.ID {
		t.Fatalf("Expected one alert for the flood, got %+v", alerts)
	}

	// 3. The barangay official verifies it
	if _, err := p.incidents.SetStatus(ctx, official, flood.ID, "verified"); err != nil {
		t.Fatalf("Failed to verify incident: %v", err)
	}

	// 4. MDRRMO adds a responder, the rescuer claims the profile and reports from the scene
	added, err := p.responders.AddResponder(ctx, mdrrmo, responder.AddInput{DistrictID: narra, FirstName: "Rescue", LastName: "One"})
	if err != nil {
		t.Fatalf("Failed to add responder: %v", err)
	}
	if _, err := p.responders.ClaimProfile(ctx, field, added.Data.ID); err != nil {
		t.Fatalf("Failed to claim profile: %v", err)
	}
	if _, err := p.responders.SubmitReport(ctx, field, responder.ReportInput{
		IncidentID:  flood.ID,
		Content:     "Water waist-deep, evacuating families to the covered court",
		ActionTaken: "evacuation",
	}); err != nil {
		t.Fatalf("Failed to submit report: %v", err)
	}

	view, err := p.dashboard.Build(ctx, field)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}
	if view.Responder == nil || view.Responder.Status != domain.ResponderOnDuty {
		t.Fatalf("Expected responder on duty, got %+v", view.Responder)
	}
	if len(view.Reports) != 1 {
		t.Errorf("Expected 1 report on the dashboard, got %d", len(view.Reports))
	}

	// 5. Chat between reporter and responder
	if _, err := p.incidents.PostMessage(ctx, citizen, flood.ID, "Salamat po!"); err != nil {
		t.Fatalf("Failed to post message: %v", err)
	}
	msgs, err := p.incidents.ListMessages(ctx, field, flood.ID)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("Expected 1 chat message, got %d", len(msgs))
	}

	// 6. Resolution and closure release the responder
	for _, status := range []string{"responding", "resolved", "closed"} {
		if _, err := p.incidents.SetStatus(ctx, official, flood.ID, status); err != nil {
			t.Fatalf("Failed to move incident to %s: %v", status, err)
		}
	}

	view, err = p.dashboard.Build(ctx, field)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}
	if view.Responder.Status != domain.ResponderAvailable {
		t.Errorf("Expected responder released after closure, got %s", view.Responder.Status)
	}
	if view.Stats.ResolvedIncidents != 1 || view.Stats.ActiveIncidents != 0 {
		t.Errorf("Expected 1 resolved and 0 active incidents, got %+v", view.Stats)
	}

	detail, err := p.districts.Detail(ctx, official, narra)
	if err != nil {
		t.Fatalf("Failed to load district: %v", err)
	}
	if detail.CitizenCount != 1 || len(detail.RecentIncidents) != 1 || len(detail.Responders) != 1 {
		t.Errorf("Unexpected district detail: %d citizens, %d incidents, %d responders",
			detail.CitizenCount, len(detail.RecentIncidents), len(detail.Responders))
	}
}
