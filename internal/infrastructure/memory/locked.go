package memory

import (
	"context"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// Outside WithinTx each call takes the mutex for its own duration.

func locked[T any](s *Store, fn func(v *txView) (T, error)) (T, error) {
	v, unlock := s.view()
	defer unlock()
	return fn(v)
}

func lockedExec(s *Store, fn func(v *txView) error) error {
	v, unlock := s.view()
	defer unlock()
	return fn(v)
}

func (s *Store) CreateActor(ctx context.Context, a *domain.Actor) error {
	return lockedExec(s, func(v *txView) error { return v.CreateActor(ctx, a) })
}

func (s *Store) GetActor(ctx context.Context, id types.ID) (*domain.Actor, error) {
	return locked(s, func(v *txView) (*domain.Actor, error) { return v.GetActor(ctx, id) })
}

func (s *Store) GetActorByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	return locked(s, func(v *txView) (*domain.Actor, error) { return v.GetActorByEmail(ctx, email) })
}

func (s *Store) CreateCitizen(ctx context.Context, c *domain.Citizen) error {
	return lockedExec(s, func(v *txView) error { return v.CreateCitizen(ctx, c) })
}

func (s *Store) CountCitizens(ctx context.Context, districtID types.ID) (int, error) {
	return locked(s, func(v *txView) (int, error) { return v.CountCitizens(ctx, districtID) })
}

func (s *Store) UpsertDistrict(ctx context.Context, d *domain.District) (bool, error) {
	return locked(s, func(v *txView) (bool, error) { return v.UpsertDistrict(ctx, d) })
}

func (s *Store) GetDistrict(ctx context.Context, id types.ID) (*domain.District, error) {
	return locked(s, func(v *txView) (*domain.District, error) { return v.GetDistrict(ctx, id) })
}

func (s *Store) GetDistrictByCode(ctx context.Context, code string) (*domain.District, error) {
	return locked(s, func(v *txView) (*domain.District, error) { return v.GetDistrictByCode(ctx, code) })
}

func (s *Store) ListDistricts(ctx context.Context, limit int) ([]domain.District, error) {
	return locked(s, func(v *txView) ([]domain.District, error) { return v.ListDistricts(ctx, limit) })
}

func (s *Store) CountDistricts(ctx context.Context) (int, error) {
	return locked(s, func(v *txView) (int, error) { return v.CountDistricts(ctx) })
}

func (s *Store) CreateResource(ctx context.Context, r *domain.Resource) error {
	return lockedExec(s, func(v *txView) error { return v.CreateResource(ctx, r) })
}

func (s *Store) ListResources(ctx context.Context, f domain.ResourceFilter) ([]domain.Resource, error) {
	return locked(s, func(v *txView) ([]domain.Resource, error) { return v.ListResources(ctx, f) })
}

func (s *Store) CountResources(ctx context.Context) (int, error) {
	return locked(s, func(v *txView) (int, error) { return v.CountResources(ctx) })
}

func (s *Store) CreateResponder(ctx context.Context, r *domain.Responder) error {
	return lockedExec(s, func(v *txView) error { return v.CreateResponder(ctx, r) })
}

func (s *Store) GetResponder(ctx context.Context, id types.ID) (*domain.Responder, error) {
	return locked(s, func(v *txView) (*domain.Responder, error) { return v.GetResponder(ctx, id) })
}

func (s *Store) LockResponder(ctx context.Context, id types.ID) (*domain.Responder, error) {
	return locked(s, func(v *txView) (*domain.Responder, error) { return v.LockResponder(ctx, id) })
}

func (s *Store) GetResponderByActor(ctx context.Context, actorID types.ID) (*domain.Responder, error) {
	return locked(s, func(v *txView) (*domain.Responder, error) { return v.GetResponderByActor(ctx, actorID) })
}

func (s *Store) LockResponderByActor(ctx context.Context, actorID types.ID) (*domain.Responder, error) {
	return locked(s, func(v *txView) (*domain.Responder, error) { return v.LockResponderByActor(ctx, actorID) })
}

func (s *Store) UpdateResponder(ctx context.Context, r *domain.Responder) error {
	return lockedExec(s, func(v *txView) error { return v.UpdateResponder(ctx, r) })
}

func (s *Store) ListResponders(ctx context.Context, f domain.ResponderFilter) ([]domain.Responder, error) {
	return locked(s, func(v *txView) ([]domain.Responder, error) { return v.ListResponders(ctx, f) })
}

func (s *Store) CountResponders(ctx context.Context) (int, error) {
	return locked(s, func(v *txView) (int, error) { return v.CountResponders(ctx) })
}

func (s *Store) HasOpenAssignment(ctx context.Context, responderID types.ID, except *types.ID) (bool, error) {
	return locked(s, func(v *txView) (bool, error) { return v.HasOpenAssignment(ctx, responderID, except) })
}

func (s *Store) RespondersOnIncident(ctx context.Context, incidentID types.ID) ([]domain.Responder, error) {
	return locked(s, func(v *txView) ([]domain.Responder, error) { return v.RespondersOnIncident(ctx, incidentID) })
}

func (s *Store) CreateIncident(ctx context.Context, i *domain.Incident) error {
	return lockedExec(s, func(v *txView) error { return v.CreateIncident(ctx, i) })
}

func (s *Store) GetIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	return locked(s, func(v *txView) (*domain.Incident, error) { return v.GetIncident(ctx, id) })
}

func (s *Store) LockIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	return locked(s, func(v *txView) (*domain.Incident, error) { return v.LockIncident(ctx, id) })
}

func (s *Store) ShareLockIncident(ctx context.Context, id types.ID) (*domain.Incident, error) {
	return locked(s, func(v *txView) (*domain.Incident, error) { return v.ShareLockIncident(ctx, id) })
}

func (s *Store) UpdateIncidentStatus(ctx context.Context, i *domain.Incident) error {
	return lockedExec(s, func(v *txView) error { return v.UpdateIncidentStatus(ctx, i) })
}

func (s *Store) ListIncidents(ctx context.Context, f domain.IncidentFilter) ([]domain.Incident, error) {
	return locked(s, func(v *txView) ([]domain.Incident, error) { return v.ListIncidents(ctx, f) })
}

func (s *Store) CountIncidents(ctx context.Context, f domain.IncidentFilter) (int, error) {
	return locked(s, func(v *txView) (int, error) { return v.CountIncidents(ctx, f) })
}

func (s *Store) CreateReport(ctx context.Context, r *domain.AssignmentReport) error {
	return lockedExec(s, func(v *txView) error { return v.CreateReport(ctx, r) })
}

func (s *Store) ListReportsByResponder(ctx context.Context, responderID types.ID, limit int) ([]domain.AssignmentReport, error) {
	return locked(s, func(v *txView) ([]domain.AssignmentReport, error) { return v.ListReportsByResponder(ctx, responderID, limit) })
}

func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	return lockedExec(s, func(v *txView) error { return v.CreateNotification(ctx, n) })
}

func (s *Store) ListNotifications(ctx context.Context, f domain.NotificationFilter) ([]domain.Notification, error) {
	return locked(s, func(v *txView) ([]domain.Notification, error) { return v.ListNotifications(ctx, f) })
}

func (s *Store) CreateChatMessage(ctx context.Context, m *domain.ChatMessage) error {
	return lockedExec(s, func(v *txView) error { return v.CreateChatMessage(ctx, m) })
}

func (s *Store) ListChatMessages(ctx context.Context, incidentID types.ID) ([]domain.ChatMessage, error) {
	return locked(s, func(v *txView) ([]domain.ChatMessage, error) { return v.ListChatMessages(ctx, incidentID) })
}
