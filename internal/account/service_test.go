package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/infrastructure/memory"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/auth"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

type fixture struct {
	store    *memory.Store
	svc      *Service
	tokens   *auth.Tokens
	district types.ID
}

func newFixture(t *testing.T, roles ...string) *fixture {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{"citizen", "responder", "official", "mdrrmo"}
	}
	cfg := config.AuthConfig{
		JWTSecret:        "test-secret",
		Issuer:           "sigurado",
		TokenTTL:         time.Hour,
		BcryptCost:       4,
		RegistrableRoles: roles,
	}

	store := memory.New()
	district := types.NewDeterministicID("district", "GLR-MLB")
	if _, err := store.UpsertDistrict(context.Background(), &domain.District{ID: district, Code: "GLR-MLB", Name: "Malubay"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	gate, err := access.NewGate(config.AccessConfig{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	tokens := auth.NewTokens(cfg)

	return &fixture{
		store:    store,
		svc:      NewService(store, gate, tokens, cfg, nil),
		tokens:   tokens,
		district: district,
	}
}

func TestRegisterCitizen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.Register(ctx, RegisterInput{
		Name:       "Maria Clara",
		Email:      "Maria@Example.com",
		Password:   "secret1",
		DistrictID: f.district.Ptr(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Message != MsgRegistered {
		t.Errorf("Expected message %q, got %q", MsgRegistered, res.Message)
	}

	actor := res.Data.Actor
	if actor.Role != domain.RoleCitizen {
		t.Errorf("Expected default role citizen, got %s", actor.Role)
	}
	if actor.Email != "maria@example.com" {
		t.Errorf("Expected normalized email, got %q", actor.Email)
	}
	if actor.PasswordHash == "secret1" {
		t.Error("Expected password to be hashed")
	}

	count, _ := f.store.CountCitizens(ctx, f.district)
	if count != 1 {
		t.Errorf("Expected citizen profile, got %d", count)
	}

	id, err := f.tokens.Parse(res.Data.Token)
	if err != nil {
		t.Fatalf("Expected valid token, got %v", err)
	}
	if id.ActorID != actor.ID {
		t.Errorf("Expected token for %s, got %s", actor.ID, id.ActorID)
	}
}

func TestRegisterRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "citizen", "responder", "official")
	if _, err := f.svc.Register(ctx, RegisterInput{Name: "Taken", Email: "taken@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"duplicate email", RegisterInput{Name: "Other", Email: "TAKEN@example.com", Password: "secret1"}, errors.ErrConflict},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "12345"}, errors.ErrValidation},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, errors.ErrValidation},
		{"missing name", RegisterInput{Email: "b@example.com", Password: "secret1"}, errors.ErrValidation},
		{"unknown role", RegisterInput{Name: "A", Email: "c@example.com", Password: "secret1", Role: "mayor"}, errors.ErrValidation},
		{"role not registrable", RegisterInput{Name: "A", Email: "d@example.com", Password: "secret1", Role: "mdrrmo"}, errors.ErrValidation},
		{"official without district", RegisterInput{Name: "A", Email: "e@example.com", Password: "secret1", Role: "official"}, errors.ErrValidation},
		{"unknown district", RegisterInput{Name: "A", Email: "f@example.com", Password: "secret1", DistrictID: types.NewID().Ptr()}, errors.ErrNotFound},
		{"malformed district", RegisterInput{Name: "A", Email: "g@example.com", Password: "secret1", DistrictID: types.ID("abc").Ptr()}, errors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	res, err := f.svc.Register(ctx, RegisterInput{Name: "Kap", Email: "kap@example.com", Password: "secret1", Role: "official", DistrictID: f.district.Ptr()})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count, _ := f.store.CountCitizens(ctx, f.district); count != 0 {
		t.Errorf("Expected no citizen profile for official, got %d", count)
	}
	if res.Data.Actor.Role != domain.RoleOfficial {
		t.Errorf("Expected official, got %s", res.Data.Actor.Role)
	}

	_, err = f.svc.Register(ctx, RegisterInput{Name: "Other", Email: "taken@example.com", Password: "secret1"})
	if appErr := errors.As(err); appErr.Message != MsgEmailTaken {
		t.Errorf("Expected message %q, got %q", MsgEmailTaken, appErr.Message)
	}
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "citizen", "responder")

	if _, err := f.svc.Register(ctx, RegisterInput{Name: "Head", Email: "head@example.com", Password: "secret1", Role: "mdrrmo"}); !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("Expected mdrrmo self-registration to be refused, got %v", err)
	}

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"mdrrmo", RegisterInput{Name: "Head", Email: "head@example.com", Password: "secret1", Role: "mdrrmo"}, nil},
		{"official", RegisterInput{Name: "Kap", Email: "kap@example.com", Password: "secret1", Role: "official", DistrictID: f.district.Ptr()}, nil},
		{"official without district", RegisterInput{Name: "Kap", Email: "kap2@example.com", Password: "secret1", Role: "official"}, errors.ErrValidation},
		{"unknown role", RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: "mayor"}, errors.ErrValidation},
		{"duplicate email", RegisterInput{Name: "Again", Email: "HEAD@example.com", Password: "secret1", Role: "mdrrmo"}, errors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := f.svc.Provision(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if string(actor.Role) != tt.input.Role {
				t.Errorf("Expected role %s, got %s", tt.input.Role, actor.Role)
			}
		})
	}

	if _, err := f.svc.Login(ctx, LoginInput{Email: "head@example.com", Password: "secret1"}); err != nil {
		t.Errorf("Expected provisioned account to log in, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.svc.Register(ctx, RegisterInput{Name: "Juan", Email: "juan@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	res, err := f.svc.Login(ctx, LoginInput{Email: "juan@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Message != "Welcome back, Juan! You have successfully logged in." {
		t.Errorf("Unexpected message %q", res.Message)
	}
	if res.Data.Token == "" {
		t.Error("Expected a token")
	}

	tests := []struct {
		name    string
		input   LoginInput
		message string
	}{
		{"unknown email", LoginInput{Email: "pedro@example.com", Password: "secret1"}, MsgEmailNotFound},
		{"wrong password", LoginInput{Email: "juan@example.com", Password: "secret2"}, MsgWrongPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tt.input)
			if !errors.Is(err, errors.ErrUnauthenticated) {
				t.Fatalf("Expected unauthenticated, got %v", err)
			}
			if got := errors.As(err).Message; got != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res, _ := f.svc.Register(ctx, RegisterInput{Name: "Juan", Email: "juan@example.com", Password: "secret1"})

	actor, err := f.svc.Resolve(ctx, auth.Identity{ActorID: res.Data.Actor.ID})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if actor.ID != res.Data.Actor.ID {
		t.Errorf("Expected %s, got %s", res.Data.Actor.ID, actor.ID)
	}

	if _, err := f.svc.Resolve(ctx, auth.Identity{ActorID: types.NewID()}); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("Expected unauthenticated, got %v", err)
	}
}

func TestHandlerFlow(t *testing.T) {
	f := newFixture(t)
	routes := NewHandler(f.svc, f.tokens).Routes()

	do := func(method, target, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/register", `{"name":"Ana","email":"ana@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(http.MethodPost, "/register", `{"name":"Ana","email":"ana@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}

	rec = do(http.MethodPost, "/login", `{"email":"ana@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Data Session `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}

	rec = do(http.MethodGet, "/me", "", login.Data.Token)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	rec = do(http.MethodGet, "/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}

	// A valid token for an account that does not exist
	ghost, _ := f.tokens.Issue(auth.Identity{ActorID: types.NewID(), Role: "citizen"})
	rec = do(http.MethodGet, "/me", "", ghost)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for unknown account, got %d", rec.Code)
	}
}
