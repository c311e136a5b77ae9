package types

// Standard collection names passed to Persistence.
const (
	CollectionTasks      = "tasks"
	CollectionLabels     = "labels"
	CollectionPriorities = "priorities"
	CollectionReminders  = "reminders"
)

// StandardCollections lists all collection names for enumeration.
var StandardCollections = []string{
	CollectionTasks,
	CollectionLabels,
	CollectionPriorities,
	CollectionReminders,
}
