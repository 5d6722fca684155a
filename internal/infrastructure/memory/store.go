// Package memory is an in-process Entity Store used for development runs
// and as the store double in service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// Store keeps every entity in maps guarded by one mutex. A transaction
// holds the mutex for its whole duration and restores a snapshot on error.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	actors        map[types.ID]domain.Actor
	citizens      map[types.ID]domain.Citizen
	districts     map[types.ID]domain.District
	resources     map[types.ID]domain.Resource
	responders    map[types.ID]domain.Responder
	incidents     map[types.ID]domain.Incident
	reports       []domain.AssignmentReport
	notifications []domain.Notification
	messages      []domain.ChatMessage
}

// New creates an empty store
func New() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		actors:     make(map[types.ID]domain.Actor),
		citizens:   make(map[types.ID]domain.Citizen),
		districts:  make(map[types.ID]domain.District),
		resources:  make(map[types.ID]domain.Resource),
		responders: make(map[types.ID]domain.Responder),
		incidents:  make(map[types.ID]domain.Incident),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.actors {
		c.actors[k] = v
	}
	for k, v := range s.citizens {
		c.citizens[k] = v
	}
	for k, v := range s.districts {
		c.districts[k] = v
	}
	for k, v := range s.resources {
		c.resources[k] = v
	}
	for k, v := range s.responders {
		c.responders[k] = v
	}
	for k, v := range s.incidents {
		c.incidents[k] = v
	}
	c.reports = append([]domain.AssignmentReport(nil), s.reports...)
	c.notifications = append([]domain.Notification(nil), s.notifications...)
	c.messages = append([]domain.ChatMessage(nil), s.messages...)
	return c
}

// WithinTx runs fn with exclusive access to the store
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&txView{st: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) view() (*txView, func()) {
	s.mu.Lock()
	return &txView{st: s.state}, s.mu.Unlock
}

// txView implements domain.Tx over the state; the caller holds the mutex
type txView struct {
	st *state
}

// --- Actors ---

func (v *txView) CreateActor(ctx context.Context, a *domain.Actor) error {
	email := domain.NormalizeEmail(a.Email)
	for _, existing := range v.st.actors {
		if domain.NormalizeEmail(existing.Email) == email {
			return errors.Conflict("email already registered")
		}
	}
	if a.DistrictID != nil {
		if _, ok := v.st.districts[*a.DistrictID]; !ok {
			return errors.NotFound("district", a.DistrictID.String())
		}
	}
	v.st.actors[a.ID] = *a
	return nil
}

func (v *txView) GetActor(ctx context.Context, id types.ID) (*domain.Actor, error) {
	a, ok := v.st.actors[id]
	if !ok {
		return nil, errors.NotFound("actor", id.String())
	}
	return &a, nil
}

func (v *txView) GetActorByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	email = domain.NormalizeEmail(email)
	for _, a := range v.st.actors {
		if domain.NormalizeEmail(a.Email) == email {
			return &a, nil
		}
	}
	return nil, errors.NotFound("actor", email)
}

func (v *txView) CreateCitizen(ctx context.Context, c *domain.Citizen) error {
	if _, ok := v.st.actors[c.ActorID]; !ok {
		return errors.NotFound("actor", c.ActorID.String())
	}
	for _, existing := range v.st.citizens {
		if existing.ActorID == c.ActorID {
			return errors.Conflict("citizen profile already exists")
		}
	}
	v.st.citizens[c.ID] = *c
	return nil
}

func (v *txView) CountCitizens(ctx context.Context, districtID types.ID) (int, error) {
	n := 0
	for _, c := range v.st.citizens {
		if c.DistrictID != nil && *c.DistrictID == districtID {
			n++
		}
	}
	return n, nil
}

// --- Districts ---

func (v *txView) UpsertDistrict(ctx context.Context, d *domain.District) (bool, error) {
	for _, existing := range v.st.districts {
		if existing.Code == d.Code {
			return false, nil
		}
	}
	v.st.districts[d.ID] = *d
	return true, nil
}

func (v *txView) GetDistrict(ctx context.Context, id types.ID) (*domain.District, error) {
	d, ok := v.st.districts[id]
	if !ok {
		return nil, errors.NotFound("district", id.String())
	}
	return &d, nil
}

func (v *txView) GetDistrictByCode(ctx context.Context, code string) (*domain.District, error) {
	for _, d := range v.st.districts {
		if d.Code == code {
			return &d, nil
		}
	}
	return nil, errors.NotFound("district", code)
}

func (v *txView) ListDistricts(ctx context.Context, limit int) ([]domain.District, error) {
	out := make([]domain.District, 0, len(v.st.districts))
	for _, d := range v.st.districts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return truncate(out, limit), nil
}

func (v *txView) CountDistricts(ctx context.Context) (int, error) {
	return len(v.st.districts), nil
}

func (v *txView) districtName(id types.ID) string {
	return v.st.districts[id].Name
}

// --- Resources ---

func (v *txView) CreateResource(ctx context.Context, r *domain.Resource) error {
	if _, ok := v.st.districts[r.DistrictID]; !ok {
		return errors.NotFound("district", r.DistrictID.String())
	}
	v.st.resources[r.ID] = *r
	return nil
}

func (v *txView) ListResources(ctx context.Context, f domain.ResourceFilter) ([]domain.Resource, error) {
	var out []domain.Resource
	for _, r := range v.st.resources {
		if f.DistrictID != nil && r.DistrictID != *f.DistrictID {
			continue
		}
		r.DistrictName = v.districtName(r.DistrictID)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *txView) CountResources(ctx context.Context) (int, error) {
	return len(v.st.resources), nil
}

// --- Responders ---

func (v *txView) CreateResponder(ctx context.Context, r *domain.Responder) error {
	if _, ok := v.st.districts[r.DistrictID]; !ok {
		return errors.NotFound("district", r.DistrictID.String())
	}
	if err := v.checkResponderOwner(r); err != nil {
		return err
	}
	v.st.responders[r.ID] = *r
	return nil
}

func (v *txView) checkResponderOwner(r *domain.Responder) error {
	if r.ActorID == nil {
		return nil
	}
	if _, ok := v.st.actors[*r.ActorID]; !ok {
		return errors.NotFound("actor", r.ActorID.String())
	}
	for _, existing := range v.st.responders {
		if existing.ID != r.ID && existing.OwnedBy(*r.ActorID) {
			return errors.Conflict("actor already owns a responder profile")
		}
	}
	return nil
}

func (v *txView) GetResponder(ctx context.Context, id types.ID) (*domain.Responder, error) {
	r, ok := v.st.responders[id]
	if !ok {
		return nil, errors.NotFound("responder", id.String())
	}
	r.DistrictName = v.districtName(r.DistrictID)
	return &r, nil
}

func (v *txView) LockResponder(ctx context.Context, id types.ID) (*domain.Responder, error) {
	return v.GetResponder(ctx, id)
}

func (v *txView) GetResponderByActor(ctx context.Context, actorID types.ID) (*domain.Responder, error) {
	for _, r := range v.st.responders {
		if r.OwnedBy(actorID) {
			r.DistrictName = v.districtName(r.DistrictID)
			return &r, nil
		}
	}
	return nil, errors.NotFound("responder", actorID.String())
}

func (v *txView) LockResponderByActor(ctx context.Context, actorID types.ID) (*domain.Responder, error) {
	return v.GetResponderByActor(ctx, actorID)
}

func (v *txView) UpdateResponder(ctx context.Context, r *domain.Responder) error {
	existing, ok := v.st.responders[r.ID]
	if !ok {
		return errors.NotFound("responder", r.ID.String())
	}
	if err := v.checkResponderOwner(r); err != nil {
		return err
	}
	existing.ActorID = r.ActorID
	existing.Status = r.Status
	existing.UpdatedAt = r.UpdatedAt
	v.st.responders[r.ID] = existing
	return nil
}

func (v *txView) ListResponders(ctx context.Context, f domain.ResponderFilter) ([]domain.Responder, error) {
	var out []domain.Responder
	for _, r := range v.st.responders {
		if f.DistrictID != nil && r.DistrictID != *f.DistrictID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		r.DistrictName = v.districtName(r.DistrictID)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (v *txView) CountResponders(ctx context.Context) (int, error) {
	return len(v.st.responders), nil
}

func (v *txView) HasOpenAssignment(ctx context.Context, responderID types.ID, except *types.ID) (bool, error) {
	for _, rep := range v.st.reports {
		if rep.ResponderID != responderID {
			continue
		}
		if except != nil && rep.IncidentID == *except {
			continue
		}
		if inc, ok := v.st.incidents[rep.IncidentID]; ok && inc.Status != domain.StatusClosed {
			return true, nil
		}
	}
	return false, nil
}

func (v *txView) RespondersOnIncident(ctx context.Context, incidentID types.ID) ([]domain.Responder, error) {
	seen := make(map[types.ID]bool)
	var out []domain.Responder
	for _, rep := range v.st.reports {
		if rep.IncidentID != incidentID || seen[rep.ResponderID] {
			continue
		}
		seen[rep.ResponderID] = true
		if r, ok := v.st.responders[rep.ResponderID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Incidents ---

func (v *txView) CreateIncident(ctx context.Context, i *domain.Incident) error {
	if _, ok := v.st.districts[i.DistrictID]; !ok {
		return errors.NotFound("district", i.DistrictID.String())
	}
	if _, ok := v.st.actors[i.ReporterActorID]; !ok {
		return errors.NotFound("actor", i.ReporterActorID.String())
	}
	v.st.incidents[i.ID] = stored(i)
	return nil
}

// stored drops the unpersisted domain events
func stored(i *domain.Incident) domain.Incident {
	c := *i
	c.PullEvents()
	return c
}

func (v *txView) GetIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	i, ok := v.st.incidents[id]
	if !ok {
		return nil, errors.NotFound("incident", id.String())
	}
	i.DistrictName = v.districtName(i.DistrictID)
	return &i, nil
}

func (v *txView) LockIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	return v.GetIncident(ctx, id)
}

func (v *txView) ShareLockIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	return v.GetIncident(ctx, id)
}

func (v *txView) UpdateIncidentStatus(ctx context.Context, i *domain.Incident) error {
	existing, ok := v.st.incidents[i.ID]
	if !ok {
		return errors.NotFound("incident", i.ID.String())
	}
	existing.Status = i.Status
	existing.UpdatedAt = i.UpdatedAt
	v.st.incidents[i.ID] = existing
	return nil
}

func (v *txView) matchIncidents(f domain.IncidentFilter) []domain.Incident {
	var out []domain.Incident
	for _, i := range v.st.incidents {
		if f.DistrictID != nil && i.DistrictID != *f.DistrictID {
			continue
		}
		if f.ReporterID != nil && i.ReporterActorID != *f.ReporterID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, i.Status) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func hasStatus(list []domain.IncidentStatus, s domain.IncidentStatus) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}
	return false
}

func (v *txView) ListIncidents(ctx context.Context, f domain.IncidentFilter) ([]domain.Incident, error) {
	out := v.matchIncidents(f)
	for k := range out {
		out[k].DistrictName = v.districtName(out[k].DistrictID)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReportedAt.Equal(out[j].ReportedAt) {
			return out[i].ReportedAt.After(out[j].ReportedAt)
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, f.Limit), nil
}

func (v *txView) CountIncidents(ctx context.Context, f domain.IncidentFilter) (int, error) {
	return len(v.matchIncidents(f)), nil
}

// --- Reports ---

func (v *txView) CreateReport(ctx context.Context, r *domain.AssignmentReport) error {
	if _, ok := v.st.incidents[r.IncidentID]; !ok {
		return errors.NotFound("incident", r.IncidentID.String())
	}
	if _, ok := v.st.responders[r.ResponderID]; !ok {
		return errors.NotFound("responder", r.ResponderID.String())
	}
	v.st.reports = append(v.st.reports, *r)
	return nil
}

func (v *txView) ListReportsByResponder(ctx context.Context, responderID types.ID, limit int) ([]domain.AssignmentReport, error) {
	var out []domain.AssignmentReport
	for _, r := range v.st.reports {
		if r.ResponderID != responderID {
			continue
		}
		inc := v.st.incidents[r.IncidentID]
		r.IncidentType = inc.Type
		r.IncidentStatus = inc.Status
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

// --- Notifications ---

func (v *txView) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if _, ok := v.st.incidents[n.IncidentID]; !ok {
		return errors.NotFound("incident", n.IncidentID.String())
	}
	v.st.notifications = append(v.st.notifications, *n)
	return nil
}

func (v *txView) ListNotifications(ctx context.Context, f domain.NotificationFilter) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range v.st.notifications {
		if n.TargetRole != f.TargetRole {
			continue
		}
		if !f.AllDistricts && n.TargetDistrict != nil && !types.SameID(n.TargetDistrict, f.TargetDistrict) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, f.Limit), nil
}

// --- Chat ---

func (v *txView) CreateChatMessage(ctx context.Context, m *domain.ChatMessage) error {
	if _, ok := v.st.incidents[m.IncidentID]; !ok {
		return errors.NotFound("incident", m.IncidentID.String())
	}
	if _, ok := v.st.actors[m.SenderActorID]; !ok {
		return errors.NotFound("actor", m.SenderActorID.String())
	}
	stored := *m
	stored.SenderName = ""
	v.st.messages = append(v.st.messages, stored)
	return nil
}

func (v *txView) ListChatMessages(ctx context.Context, incidentID types.ID) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range v.st.messages {
		if m.IncidentID != incidentID {
			continue
		}
		m.SenderName = strings.TrimSpace(v.st.actors[m.SenderActorID].Name)
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
