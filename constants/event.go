package constants

// EventType is the canonical event kind for rows in inventory_events.
type EventType string

// Stable values (store these exact strings in DB).
const (
	EventReceive   EventType = "receive"
	EventRemove    EventType = "remove"
	EventOrderVoid EventType = "order_void"
)

// ReasonOrderVoid tags removal rows generated by voiding an order, so undoing
// the void can find and delete exactly those rows.
const ReasonOrderVoid = "order_void"
