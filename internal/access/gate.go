// Package access decides whether an actor may perform an action on a target.
// Decisions depend only on the actor's role and district and the target's
// district and owner; the gate never touches the store.
package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// Decision is the outcome of Authorize
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Target describes what an action is applied to. A zero Target stands
// for an action with no particular subject, such as listing.
type Target struct {
	DistrictID *types.ID
	OwnerID    *types.ID
}

// InDistrict targets a district-scoped record
func InDistrict(id types.ID) Target {
	return Target{DistrictID: &id}
}

// Gate is the access decision point
type Gate struct {
	enforcer *casbin.SyncedEnforcer
	log      *zap.Logger
}

// NewGate builds the gate from the built-in policy table
func NewGate(cfg config.AccessConfig, log *zap.Logger) (*Gate, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(policies(cfg.RestrictCitizenIncidents)); err != nil {
		return nil, fmt.Errorf("failed to load access policies: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{enforcer: enforcer, log: log}, nil
}

// Authorize decides whether actor may perform action on target. A nil
// actor may only register or log in.
func (g *Gate) Authorize(actor *domain.Actor, action Action, target Target) Decision {
	subject, role := anonymous, anonymous
	if actor != nil {
		subject, role = string(actor.Role), string(actor.Role)
	}

	allowed := false
	for _, scope := range relations(actor, target) {
		ok, err := g.enforcer.Enforce(subject, string(action), scope)
		if err != nil {
			g.log.Error("access enforcement failed",
				zap.String("action", string(action)),
				zap.String("role", role),
				zap.Error(err),
			)
			break
		}
		if ok {
			allowed = true
			break
		}
	}

	metrics.RecordAuthorizationDecision(string(action), role, allowed)
	return Decision(allowed)
}

// relations lists the scopes that hold between actor and target
func relations(actor *domain.Actor, target Target) []string {
	scopes := []string{scopeNone}
	if actor == nil {
		return scopes
	}
	if target.DistrictID != nil && actor.InDistrict(*target.DistrictID) {
		scopes = append(scopes, scopeDistrict)
	}
	if target.OwnerID != nil && *target.OwnerID == actor.ID {
		scopes = append(scopes, scopeOwn)
	}
	return scopes
}

// Check is Authorize returning an error: Unauthenticated for a nil actor
// on a guarded action, Forbidden otherwise
func (g *Gate) Check(actor *domain.Actor, action Action, target Target) error {
	if g.Authorize(actor, action, target) {
		return nil
	}
	if actor == nil {
		return errors.Unauthenticated("authentication required")
	}
	return errors.Forbidden(fmt.Sprintf("%s may not %s", actor.Role, action))
}

// Scope narrows a list query to what the actor may see
type Scope struct {
	DistrictID *types.ID
	OwnerID    *types.ID
}

// ListScope narrows a list query for actor. Roles granted the action
// everywhere keep the requested district. District-scoped roles are
// pinned to their own district and fail with Forbidden when asking for
// another. Owner-scoped roles only see their own records.
func (g *Gate) ListScope(actor *domain.Actor, action Action, requested *types.ID) (Scope, error) {
	if actor == nil {
		return Scope{}, errors.Unauthenticated("authentication required")
	}

	if g.Authorize(actor, action, Target{}) {
		return Scope{DistrictID: requested}, nil
	}

	if actor.DistrictID != nil && g.Authorize(actor, action, InDistrict(*actor.DistrictID)) {
		if requested != nil && *requested != *actor.DistrictID {
			return Scope{}, errors.Forbidden(fmt.Sprintf("%s may only list records of their own district", actor.Role))
		}
		return Scope{DistrictID: actor.DistrictID}, nil
	}

	if g.Authorize(actor, action, Target{OwnerID: &actor.ID}) {
		return Scope{DistrictID: requested, OwnerID: &actor.ID}, nil
	}

	return Scope{}, errors.Forbidden(fmt.Sprintf("%s may not %s", actor.Role, action))
}
