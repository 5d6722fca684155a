// Package responder coordinates field responders: their profiles, their
// availability and the assignment reports they file against incidents.
package responder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/events"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/logging"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/validate"
)

const (
	MsgAdded           = "Responder added successfully"
	MsgReportSubmitted = "Report submitted successfully"
	MsgProfileClaimed  = "Responder profile linked to your account"

	recentReportsLimit = 10
)

// Service is the responder coordinator
type Service struct {
	store      domain.Store
	gate       *access.Gate
	dispatcher *events.Dispatcher
	cfg        config.CoordinationConfig
	log        *zap.Logger
}

// NewService creates a new responder service
func NewService(store domain.Store, gate *access.Gate, dispatcher *events.Dispatcher, cfg config.CoordinationConfig, log *zap.Logger) *Service {
	return &Service{
		store:      store,
		gate:       gate,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        logging.OrNop(log).Named("responder"),
	}
}

// AddInput describes a new responder profile
type AddInput struct {
	DistrictID     types.ID `json:"district_id" validate:"required,uuid"`
	FirstName      string   `json:"first_name" validate:"required,max=100"`
	MiddleName     string   `json:"middle_name" validate:"max=100"`
	LastName       string   `json:"last_name" validate:"required,max=100"`
	ContactNumber  string   `json:"contact_number" validate:"max=30"`
	Position       string   `json:"position" validate:"max=100"`
	Specialization string   `json:"specialization" validate:"max=100"`
	Status         string   `json:"status"`
}

// AddResponder creates an unclaimed responder profile in a district
func (s *Service) AddResponder(ctx context.Context, actor *domain.Actor, in AddInput) (types.Result[*domain.Responder], error) {
	var res types.Result[*domain.Responder]
	if err := s.gate.Check(actor, access.ActionResponderCreate, access.InDistrict(in.DistrictID)); err != nil {
		return res, err
	}
	if err := validate.Struct(in); err != nil {
		return res, err
	}

	var responder *domain.Responder
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		district, err := tx.GetDistrict(ctx, in.DistrictID)
		if err != nil {
			return err
		}

		responder, err = domain.NewResponder(district.ID, domain.ResponderProfile{
			FirstName:      in.FirstName,
			MiddleName:     in.MiddleName,
			LastName:       in.LastName,
			ContactNumber:  in.ContactNumber,
			Position:       in.Position,
			Specialization: in.Specialization,
			Status:         in.Status,
		})
		if err != nil {
			return err
		}
		if err := tx.CreateResponder(ctx, responder); err != nil {
			return err
		}
		responder.DistrictName = district.Name
		return nil
	})
	if err != nil {
		return res, err
	}

	s.log.Info("responder added",
		zap.String("responder_id", responder.ID.String()),
		zap.String("district_id", responder.DistrictID.String()),
	)
	return types.NewResult(responder, MsgAdded), nil
}

// lockOwnProfile loads and locks the profile the actor owns. Actors
// without a profile are refused with Forbidden.
func lockOwnProfile(ctx context.Context, tx domain.Tx, actor *domain.Actor) (*domain.Responder, error) {
	r, err := tx.LockResponderByActor(ctx, actor.ID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Forbidden("no responder profile is linked to this account")
	}
	return r, err
}

// ReportInput is a field report on an incident
type ReportInput struct {
	IncidentID    types.ID `json:"incident_id" validate:"required,uuid"`
	Content       string   `json:"content" validate:"required,max=5000"`
	ActionTaken   string   `json:"action_taken" validate:"max=2000"`
	ResourcesUsed string   `json:"resources_used" validate:"max=2000"`
}

// SubmitReport files a report for the actor's responder profile and puts
// that responder on duty. Both writes commit together or not at all.
func (s *Service) SubmitReport(ctx context.Context, actor *domain.Actor, in ReportInput) (types.Result[*domain.AssignmentReport], error) {
	var res types.Result[*domain.AssignmentReport]
	if err := s.gate.Check(actor, access.ActionReportSubmit, access.Target{}); err != nil {
		return res, err
	}
	if err := validate.Struct(in); err != nil {
		return res, err
	}

	var report *domain.AssignmentReport
	var evs []events.Event
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		responder, err := lockOwnProfile(ctx, tx, actor)
		if err != nil {
			return err
		}

		// A concurrent close waits for this report, so the release reactor sees it
		incident, err := tx.ShareLockIncident(ctx, in.IncidentID)
		if err != nil {
			return err
		}
		if incident.Status == domain.StatusClosed {
			return errors.Validation("cannot report on a closed incident", map[string]string{"incident_id": "incident is closed"})
		}

		report, err = domain.NewAssignmentReport(incident.ID, responder.ID, in.Content, in.ActionTaken, in.ResourcesUsed)
		if err != nil {
			return err
		}
		if err := tx.CreateReport(ctx, report); err != nil {
			return err
		}
		evs = append(evs, s.event(domain.EventReportSubmitted, actor, domain.ReportSubmitted{Report: *report}))

		if responder.Status != domain.ResponderOnDuty {
			ev, err := s.setStatus(ctx, tx, actor, responder, domain.ResponderOnDuty)
			if err != nil {
				return err
			}
			evs = append(evs, ev)
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	metrics.RecordReportSubmitted()
	s.log.Info("assignment report submitted",
		zap.String("report_id", report.ID.String()),
		zap.String("incident_id", report.IncidentID.String()),
		zap.String("responder_id", report.ResponderID.String()),
	)
	s.dispatcher.Dispatch(ctx, evs...)

	return types.NewResult(report, MsgReportSubmitted), nil
}

// SetResponderStatus changes the availability of the actor's own profile.
// on-duty requires an assignment on an incident that is not closed.
func (s *Service) SetResponderStatus(ctx context.Context, actor *domain.Actor, status string) (types.Result[*domain.Responder], error) {
	var res types.Result[*domain.Responder]
	if actor == nil {
		return res, errors.Unauthenticated("authentication required")
	}

	var responder *domain.Responder
	var evs []events.Event
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		responder, err = lockOwnProfile(ctx, tx, actor)
		if err != nil {
			return err
		}
		if err := s.gate.Check(actor, access.ActionResponderUpdateStatus, access.Target{OwnerID: responder.ActorID}); err != nil {
			return err
		}

		next, err := domain.ParseResponderStatus(status)
		if err != nil {
			return err
		}
		if next == responder.Status {
			return nil
		}
		if next == domain.ResponderOnDuty {
			open, err := tx.HasOpenAssignment(ctx, responder.ID, nil)
			if err != nil {
				return err
			}
			if !open {
				return errors.InvalidStatus(status, "on-duty requires a report on an incident that is not closed")
			}
		}

		ev, err := s.setStatus(ctx, tx, actor, responder, next)
		if err != nil {
			return err
		}
		evs = append(evs, ev)
		return nil
	})
	if err != nil {
		return res, err
	}

	s.dispatcher.Dispatch(ctx, evs...)
	return types.NewResult(responder, "Status updated to "+string(responder.Status)), nil
}

// setStatus writes a status change and returns its event
func (s *Service) setStatus(ctx context.Context, tx domain.Tx, actor *domain.Actor, r *domain.Responder, next domain.ResponderStatus) (events.Event, error) {
	from := r.Status
	r.Status = next
	r.UpdatedAt = time.Now().UTC()
	if err := tx.UpdateResponder(ctx, r); err != nil {
		return events.Event{}, err
	}

	metrics.RecordResponderStatusChange(string(next))
	return s.event(domain.EventResponderStatusChanged, actor, domain.ResponderStatusChanged{
		ResponderID: r.ID,
		DistrictID:  r.DistrictID,
		From:        from,
		To:          next,
	}), nil
}

func (s *Service) event(eventType string, actor *domain.Actor, data any) events.Event {
	ev := events.NewEvent(eventType, "responder", data)
	if actor != nil {
		ev = ev.WithActor(actor.ID, string(actor.Role))
	}
	return ev
}

// ListForDistrict lists responders by last name, narrowed to what the actor may see
func (s *Service) ListForDistrict(ctx context.Context, actor *domain.Actor, districtID *types.ID) ([]domain.Responder, error) {
	scope, err := s.gate.ListScope(actor, access.ActionResponderRead, districtID)
	if err != nil {
		return nil, err
	}
	responders, err := s.store.ListResponders(ctx, domain.ResponderFilter{DistrictID: scope.DistrictID})
	if err != nil {
		return nil, err
	}
	if responders == nil {
		responders = []domain.Responder{}
	}
	return responders, nil
}

// ClaimProfile links an unclaimed responder profile to the acting account
func (s *Service) ClaimProfile(ctx context.Context, actor *domain.Actor, responderID types.ID) (types.Result[*domain.Responder], error) {
	var res types.Result[*domain.Responder]
	if err := s.gate.Check(actor, access.ActionResponderClaim, access.Target{}); err != nil {
		return res, err
	}

	var responder *domain.Responder
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.GetResponderByActor(ctx, actor.ID); err == nil {
			return errors.Conflict("this account already has a responder profile")
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}

		var err error
		responder, err = tx.LockResponder(ctx, responderID)
		if err != nil {
			return err
		}
		if responder.IsClaimed() {
			return errors.Conflict("responder profile is already claimed")
		}

		responder.ActorID = actor.ID.Ptr()
		responder.UpdatedAt = time.Now().UTC()
		return tx.UpdateResponder(ctx, responder)
	})
	if err != nil {
		return res, err
	}

	s.log.Info("responder profile claimed",
		zap.String("responder_id", responder.ID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return types.NewResult(responder, MsgProfileClaimed), nil
}

// MyReports lists the actor's most recent reports
func (s *Service) MyReports(ctx context.Context, actor *domain.Actor) ([]domain.AssignmentReport, error) {
	if err := s.gate.Check(actor, access.ActionReportSubmit, access.Target{}); err != nil {
		return nil, err
	}
	responder, err := s.store.GetResponderByActor(ctx, actor.ID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Forbidden("no responder profile is linked to this account")
	}
	if err != nil {
		return nil, err
	}

	reports, err := s.store.ListReportsByResponder(ctx, responder.ID, recentReportsLimit)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []domain.AssignmentReport{}
	}
	return reports, nil
}
