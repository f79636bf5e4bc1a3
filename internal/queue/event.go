package queue

// EventQueueName is the durable queue every state-change event is published
// to and the audit consumer reads from.
const EventQueueName = "booking.events"

// Entity types carried in StateChangedEvent.EntityType.
const (
	EntityBooking = "booking"
	EntityCheckIn = "checkin"
)

// StateChangedEvent is published for every booking and check-in state
// transition (create, cancel, complete, check-in, check-out).  It is the
// append-only feed that audit and reporting collaborators subscribe to; this
// service does not define how consumers store it.  PreviousState is empty
// for creation events.  Enough context is included for downstream consumers
// to log or notify without querying the primary database.
type StateChangedEvent struct {
	EventID        string `json:"event_id"`
	EntityType     string `json:"entity_type"`
	EntityID       string `json:"entity_id"`
	WorkspaceID    uint64 `json:"workspace_id"`
	OrganizationID uint64 `json:"organization_id,omitempty"`
	Date           string `json:"date,omitempty"`
	Interval       string `json:"interval,omitempty"`
	PreviousState  string `json:"previous_state"`
	NewState       string `json:"new_state"`
	NoShow         bool   `json:"no_show,omitempty"`
	Actor          string `json:"actor"`
	Timestamp      string `json:"timestamp"`
}
