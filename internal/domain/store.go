package domain

import (
	"context"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// IncidentFilter narrows incident queries. Zero values mean "no filter".
type IncidentFilter struct {
	DistrictID *types.ID
	ReporterID *types.ID
	Statuses   []IncidentStatus
	Limit      int
}

type ResponderFilter struct {
	DistrictID *types.ID
	Status     ResponderStatus
}

type ResourceFilter struct {
	DistrictID *types.ID
}

// NotificationFilter selects notifications addressed to TargetRole. With
// AllDistricts unset only district-less notifications and those for
// TargetDistrict match.
type NotificationFilter struct {
	TargetRole     Role
	TargetDistrict *types.ID
	AllDistricts   bool
	Limit          int
}

// Tx is the set of entity operations available inside and outside a transaction.
// Lookups return a NotFound error when the row does not exist.
type Tx interface {
	CreateActor(ctx context.Context, a *Actor) error
	GetActor(ctx context.Context, id types.ID) (*Actor, error)
	GetActorByEmail(ctx context.Context, email string) (*Actor, error)

	CreateCitizen(ctx context.Context, c *Citizen) error
	CountCitizens(ctx context.Context, districtID types.ID) (int, error)

	// UpsertDistrict inserts d unless a district with the same code exists
	UpsertDistrict(ctx context.Context, d *District) (bool, error)
	GetDistrict(ctx context.Context, id types.ID) (*District, error)
	GetDistrictByCode(ctx context.Context, code string) (*District, error)
	ListDistricts(ctx context.Context, limit int) ([]District, error)
	CountDistricts(ctx context.Context) (int, error)

	CreateResource(ctx context.Context, r *Resource) error
	ListResources(ctx context.Context, f ResourceFilter) ([]Resource, error)
	CountResources(ctx context.Context) (int, error)

	CreateResponder(ctx context.Context, r *Responder) error
	GetResponder(ctx context.Context, id types.ID) (*Responder, error)
	// LockResponder loads a responder for update within the current transaction
	LockResponder(ctx context.Context, id types.ID) (*Responder, error)
	// LockResponderByActor loads the profile owned by actorID for update
	LockResponderByActor(ctx context.Context, actorID types.ID) (*Responder, error)
	GetResponderByActor(ctx context.Context, actorID types.ID) (*Responder, error)
	UpdateResponder(ctx context.Context, r *Responder) error
	ListResponders(ctx context.Context, f ResponderFilter) ([]Responder, error)
	CountResponders(ctx context.Context) (int, error)
	// HasOpenAssignment reports whether the responder has a report on an
	// incident that is not closed, ignoring incident except when nil
	HasOpenAssignment(ctx context.Context, responderID types.ID, except *types.ID) (bool, error)
	// RespondersOnIncident lists the distinct responders that reported on incidentID
	RespondersOnIncident(ctx context.Context, incidentID types.ID) ([]Responder, error)

	CreateIncident(ctx context.Context, i *Incident) error
	GetIncident(ctx context.Context, id types.ID) (*Incident, error)
	// LockIncident loads an incident for update within the current transaction
	LockIncident(ctx context.Context, id types.ID) (*Incident, error)
	// ShareLockIncident loads an incident and holds off status changes until commit
	ShareLockIncident(ctx context.Context, id types.ID) (*Incident, error)
	UpdateIncidentStatus(ctx context.Context, i *Incident) error
	ListIncidents(ctx context.Context, f IncidentFilter) ([]Incident, error)
	CountIncidents(ctx context.Context, f IncidentFilter) (int, error)

	CreateReport(ctx context.Context, r *AssignmentReport) error
	ListReportsByResponder(ctx context.Context, responderID types.ID, limit int) ([]AssignmentReport, error)

	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, f NotificationFilter) ([]Notification, error)

	CreateChatMessage(ctx context.Context, m *ChatMessage) error
	ListChatMessages(ctx context.Context, incidentID types.ID) ([]ChatMessage, error)
}

// Store is the entity store. WithinTx runs fn atomically: if fn returns an
// error no write made through tx is kept.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}
