package events

// Content stream event types. Realtime events are mapped onto these by the
// consumer so external pipelines see one stream per change.
const (
	ActivityCreated   = "ACTIVITY_CREATED"
	ActivityUpdated   = "ACTIVITY_UPDATED"
	ActivityDeleted   = "ACTIVITY_DELETED"
	ActivityPublished = "ACTIVITY_PUBLISHED"

	ElementCreated     = "ELEMENT_CREATED"
	ElementUpdated     = "ELEMENT_UPDATED"
	ElementDeleted     = "ELEMENT_DELETED"
	ElementBulkUpdated = "ELEMENT_BULK_UPDATED"
)
