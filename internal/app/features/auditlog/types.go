package auditlog

import (
	"time"

	"github.com/homeandown/estatehub/internal/app/store/audit"
)

// listItem is one audit event with names resolved.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	ActorName  string            `json:"actor_name,omitempty"`
	TargetName string            `json:"target_name,omitempty"`
	Table      string            `json:"table,omitempty"`
	RecordID   string            `json:"record_id,omitempty"`
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type listData struct {
	Items []listItem `json:"items"`

	Category  string `json:"category"`
	EventType string `json:"event_type"`
	Table     string `json:"table"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	Categories []categoryOption `json:"categories"`
	EventTypes []string         `json:"event_types"`

	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	RangeStart int   `json:"range_start"`
	RangeEnd   int   `json:"range_end"`
	PrevPage   int   `json:"prev_page"`
	NextPage   int   `json:"next_page"`
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

var (
	authEvents = []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLogout,
	}
	adminEvents = []string{
		audit.EventRecordCreated,
		audit.EventRecordUpdated,
		audit.EventRecordDeleted,
		audit.EventAgentAssigned,
		audit.EventAssignmentResponded,
		audit.EventSellerDecided,
		audit.EventNotificationCreated,
		audit.EventDataExported,
	}
)

// eventTypesForCategory returns the event types of category, or all of
// them when category is empty.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	}
	return nil
}
