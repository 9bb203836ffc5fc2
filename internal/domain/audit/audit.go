package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the type of audit event.
type Category string

const (
	CategoryAuth   Category = "auth"
	CategoryUser   Category = "user"
	CategoryExport Category = "export"
	CategorySystem Category = "system"
)

// Action represents the action that occurred.
type Action string

const (
	ActionLogin      Action = "login"
	ActionLoginFail  Action = "login_failed"
	ActionLogout     Action = "logout"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
	ActionDelete     Action = "delete"
	ActionExport     Action = "export"
	ActionSeed       Action = "seed"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ResourceUser is the resource type for user documents.
const ResourceUser = "user"

// Event represents a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorEmail   string    `json:"actorEmail"`
	ResourceID   string    `json:"resourceId"`
	ResourceType string    `json:"resourceType"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	Metadata     string    `json:"metadata"`
}

// NewEvent creates an audit event stamped at now.
// PRE: actorEmail may be empty for anonymous events (failed logins)
// POST: ID is a fresh UUID, severity is info
func NewEvent(actorEmail string, category Category, action Action, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Timestamp:  now.UTC(),
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorEmail: actorEmail,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
// PRE: resourceType and resourceID are non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent from the HTTP request.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}

// WithMetadata sets optional JSON metadata.
// PRE: metadata is valid JSON or empty
func (e Event) WithMetadata(metadata string) Event {
	e.Metadata = metadata
	return e
}
