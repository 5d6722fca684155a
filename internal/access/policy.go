package access

import (
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
)

// Action names an operation the gate decides on
type Action string

const (
	ActionRegister Action = "account.register"
	ActionLogin    Action = "account.login"

	ActionIncidentCreate       Action = "incident.create"
	ActionIncidentRead         Action = "incident.read"
	ActionIncidentUpdateStatus Action = "incident.update_status"
	ActionChatPost             Action = "chat.post"

	ActionDistrictRead   Action = "district.read"
	ActionResourceRead   Action = "resource.read"
	ActionResourceCreate Action = "resource.create"

	ActionResponderRead         Action = "responder.read"
	ActionResponderCreate       Action = "responder.create"
	ActionResponderClaim        Action = "responder.claim"
	ActionReportSubmit          Action = "report.submit"
	ActionResponderUpdateStatus Action = "responder.update_status"

	ActionNotificationRead Action = "notification.read"

	ActionDashboardGlobal    Action = "dashboard.global"
	ActionDashboardDistrict  Action = "dashboard.district"
	ActionDashboardResponder Action = "dashboard.responder"
)

// Scopes a policy row can require of the actor/target relation
const (
	scopeAny      = "any"
	scopeDistrict = "district"
	scopeOwn      = "own"
	scopeNone     = "none"
)

// anonymous is the casbin subject for requests without an actor
const anonymous = "anonymous"

const modelText = `
[request_definition]
r = sub, act, scope

[policy_definition]
p = sub, act, scope

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act && (p.scope == "any" || r.scope == p.scope)
`

type grant struct {
	role   string
	action Action
	scope  string
}

func g(role domain.Role, action Action, scope string) grant {
	return grant{role: string(role), action: action, scope: scope}
}

// policies returns the permission table. restrictCitizens limits
// citizens to reading incidents they reported.
func policies(restrictCitizens bool) [][]string {
	citizenIncidentScope := scopeAny
	if restrictCitizens {
		citizenIncidentScope = scopeOwn
	}

	grants := []grant{
		{anonymous, ActionRegister, scopeAny},
		{anonymous, ActionLogin, scopeAny},

		g(domain.RoleCitizen, ActionIncidentCreate, scopeAny),
		g(domain.RoleCitizen, ActionIncidentRead, citizenIncidentScope),
		g(domain.RoleCitizen, ActionChatPost, citizenIncidentScope),
		g(domain.RoleCitizen, ActionDistrictRead, scopeAny),
		g(domain.RoleCitizen, ActionResourceRead, scopeAny),
		g(domain.RoleCitizen, ActionResponderRead, scopeAny),
		g(domain.RoleCitizen, ActionNotificationRead, scopeAny),

		g(domain.RoleResponder, ActionIncidentCreate, scopeAny),
		g(domain.RoleResponder, ActionIncidentRead, scopeAny),
		g(domain.RoleResponder, ActionChatPost, scopeAny),
		g(domain.RoleResponder, ActionDistrictRead, scopeAny),
		g(domain.RoleResponder, ActionResourceRead, scopeAny),
		g(domain.RoleResponder, ActionResponderRead, scopeAny),
		g(domain.RoleResponder, ActionResponderClaim, scopeAny),
		g(domain.RoleResponder, ActionReportSubmit, scopeAny),
		g(domain.RoleResponder, ActionResponderUpdateStatus, scopeOwn),
		g(domain.RoleResponder, ActionNotificationRead, scopeAny),
		g(domain.RoleResponder, ActionDashboardResponder, scopeOwn),

		g(domain.RoleOfficial, ActionIncidentCreate, scopeDistrict),
		g(domain.RoleOfficial, ActionIncidentRead, scopeDistrict),
		g(domain.RoleOfficial, ActionIncidentUpdateStatus, scopeDistrict),
		g(domain.RoleOfficial, ActionChatPost, scopeDistrict),
		g(domain.RoleOfficial, ActionDistrictRead, scopeAny),
		g(domain.RoleOfficial, ActionResourceRead, scopeDistrict),
		g(domain.RoleOfficial, ActionResourceCreate, scopeDistrict),
		g(domain.RoleOfficial, ActionResponderRead, scopeDistrict),
		g(domain.RoleOfficial, ActionNotificationRead, scopeAny),
		g(domain.RoleOfficial, ActionDashboardDistrict, scopeDistrict),

		g(domain.RoleMDRRMO, ActionIncidentCreate, scopeAny),
		g(domain.RoleMDRRMO, ActionIncidentRead, scopeAny),
		g(domain.RoleMDRRMO, ActionIncidentUpdateStatus, scopeAny),
		g(domain.RoleMDRRMO, ActionChatPost, scopeAny),
		g(domain.RoleMDRRMO, ActionDistrictRead, scopeAny),
		g(domain.RoleMDRRMO, ActionResourceRead, scopeAny),
		g(domain.RoleMDRRMO, ActionResourceCreate, scopeAny),
		g(domain.RoleMDRRMO, ActionResponderRead, scopeAny),
		g(domain.RoleMDRRMO, ActionResponderCreate, scopeAny),
		g(domain.RoleMDRRMO, ActionNotificationRead, scopeAny),
		g(domain.RoleMDRRMO, ActionDashboardGlobal, scopeAny),
	}

	rules := make([][]string, len(grants))
	for i, gr := range grants {
		rules[i] = []string{gr.role, string(gr.action), gr.scope}
	}
	return rules
}
