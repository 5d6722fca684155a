package domain

import (
	"time"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

type NotificationType string

const (
	NotificationAlert  NotificationType = "alert"
	NotificationInfo   NotificationType = "info"
	NotificationUpdate NotificationType = "update"
)

// Notification is produced only by the fanout in reaction to incident events
type Notification struct {
	ID             types.ID         `json:"id"`
	IncidentID     types.ID         `json:"incident_id"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	TargetRole     Role             `json:"target_role"`
	TargetDistrict *types.ID        `json:"target_district,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// VisibleTo reports whether actor is an intended recipient. The mdrrmo
// office sees its notifications for every district.
func (n *Notification) VisibleTo(actor *Actor) bool {
	if n.TargetRole != actor.Role {
		return false
	}
	if n.TargetDistrict == nil || actor.Role == RoleMDRRMO {
		return true
	}
	return types.SameID(n.TargetDistrict, actor.DistrictID)
}
