package events

// Event enumerates the topics inside the fraud core.
type Event string

const (
	EventAlertCreated  Event = "alert.created"
	EventAlertResolved Event = "alert.resolved"
	EventRulesReloaded Event = "rules.reloaded"
)
