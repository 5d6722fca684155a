// Package account registers actors, logs them in and resolves bearer
// tokens back to stored actors.
package account

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/auth"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/validate"
)

const (
	MsgRegistered      = "Registration successful! Welcome to SIGURADO."
	MsgEmailTaken      = "Email already registered. Please login instead."
	MsgEmailNotFound   = "Email not found. Please check your email or register for an account."
	MsgWrongPassword   = "Incorrect password. Please try again."
	msgWelcomeTemplate = "Welcome back, %s! You have successfully logged in."
)

// Session is what a successful register or login hands back
type Session struct {
	Actor *domain.Actor `json:"actor"`
	Token string        `json:"token"`
}

// Service manages accounts
type Service struct {
	store  domain.Store
	gate   *access.Gate
	tokens *auth.Tokens
	cfg    config.AuthConfig
	log    *zap.Logger
}

// NewService creates a new account service
func NewService(store domain.Store, gate *access.Gate, tokens *auth.Tokens, cfg config.AuthConfig, log *zap.Logger) *Service {
	return &Service{
		store:  store,
		gate:   gate,
		tokens: tokens,
		cfg:    cfg,
		log:    logging.OrNop(log).Named("account"),
	}
}

// RegisterInput is a sign-up request
type RegisterInput struct {
	Name          string    `json:"name" validate:"required,max=255"`
	Email         string    `json:"email" validate:"required,email,max=255"`
	Password      string    `json:"password" validate:"required,min=6,max=72"`
	Role          string    `json:"role"`
	DistrictID    *types.ID `json:"district_id" validate:"omitempty,uuid"`
	ContactNumber string    `json:"contact_number" validate:"max=30"`
}

// Register creates an actor, and a citizen profile for citizens, then
// issues a token for the new account
func (s *Service) Register(ctx context.Context, in RegisterInput) (types.Result[*Session], error) {
	var res types.Result[*Session]
	if err := s.gate.Check(nil, access.ActionRegister, access.Target{}); err != nil {
		return res, err
	}
	if err := validate.Struct(in); err != nil {
		return res, err
	}

	role, err := s.registrableRole(in.Role)
	if err != nil {
		return res, err
	}

	actor, err := s.createAccount(ctx, in, role)
	if err != nil {
		return res, err
	}

	token, err := s.issue(actor)
	if err != nil {
		return res, err
	}

	s.log.Info("account registered",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(actor.Role)),
	)
	return types.NewResult(&Session{Actor: actor, Token: token}, MsgRegistered), nil
}

// Provision creates an account in any role. It is the operator path for
// official and mdrrmo accounts, which are not self-registrable by default.
func (s *Service) Provision(ctx context.Context, in RegisterInput) (*domain.Actor, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	role := domain.RoleCitizen
	if in.Role != "" {
		var ok bool
		if role, ok = domain.ParseRole(in.Role); !ok {
			return nil, errors.Validation("invalid role", map[string]string{"role": "unknown role " + in.Role})
		}
	}

	actor, err := s.createAccount(ctx, in, role)
	if err != nil {
		return nil, err
	}
	s.log.Info("account provisioned",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(actor.Role)),
	)
	return actor, nil
}

// createAccount hashes the password and stores the actor, plus a citizen
// profile for citizens, in one transaction
func (s *Service) createAccount(ctx context.Context, in RegisterInput, role domain.Role) (*domain.Actor, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	var actor *domain.Actor
	err = s.store.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.GetActorByEmail(ctx, in.Email); err == nil {
			return errors.Conflict(MsgEmailTaken)
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}

		if in.DistrictID != nil {
			if _, err := tx.GetDistrict(ctx, *in.DistrictID); err != nil {
				return err
			}
		}

		actor, err = domain.NewActor(in.Name, in.Email, string(hash), role, in.DistrictID)
		if err != nil {
			return err
		}
		if err := tx.CreateActor(ctx, actor); err != nil {
			if errors.Is(err, errors.ErrConflict) {
				return errors.Conflict(MsgEmailTaken)
			}
			return err
		}

		if role == domain.RoleCitizen {
			return tx.CreateCitizen(ctx, domain.NewCitizen(actor, in.ContactNumber))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return actor, nil
}

// registrableRole defaults an empty role to citizen and rejects roles
// that cannot be self-registered
func (s *Service) registrableRole(raw string) (domain.Role, error) {
	if raw == "" {
		return domain.RoleCitizen, nil
	}
	role, ok := domain.ParseRole(raw)
	if !ok || !slices.Contains(s.cfg.RegistrableRoles, raw) {
		return "", errors.Validation("invalid role", map[string]string{"role": "cannot register as " + raw})
	}
	return role, nil
}

// LoginInput is a sign-in request
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials and issues a token
func (s *Service) Login(ctx context.Context, in LoginInput) (types.Result[*Session], error) {
	var res types.Result[*Session]
	if err := s.gate.Check(nil, access.ActionLogin, access.Target{}); err != nil {
		return res, err
	}
	if err := validate.Struct(in); err != nil {
		return res, err
	}

	actor, err := s.store.GetActorByEmail(ctx, in.Email)
	if errors.Is(err, errors.ErrNotFound) {
		return res, errors.Unauthenticated(MsgEmailNotFound)
	}
	if err != nil {
		return res, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(in.Password)); err != nil {
		s.log.Info("login rejected", zap.String("actor_id", actor.ID.String()))
		return res, errors.Unauthenticated(MsgWrongPassword)
	}

	token, err := s.issue(actor)
	if err != nil {
		return res, err
	}
	return types.NewResult(&Session{Actor: actor, Token: token}, fmt.Sprintf(msgWelcomeTemplate, actor.Name)), nil
}

func (s *Service) issue(actor *domain.Actor) (string, error) {
	token, err := s.tokens.Issue(auth.Identity{
		ActorID:    actor.ID,
		Role:       string(actor.Role),
		DistrictID: actor.DistrictID,
	})
	if err != nil {
		return "", errors.Internal(err)
	}
	return token, nil
}

// Resolve loads the actor a verified token names. Accounts deleted since
// the token was issued are Unauthenticated.
func (s *Service) Resolve(ctx context.Context, id auth.Identity) (*domain.Actor, error) {
	actor, err := s.store.GetActor(ctx, id.ActorID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Unauthenticated("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return actor, nil
}
