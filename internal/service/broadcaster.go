package service

import "context"

// Realtime events, one logical channel per repository.
const (
	EventActivityCreate = "activity:create"
	EventActivityUpdate = "activity:update"
	EventActivityDelete = "activity:delete"

	EventElementCreate     = "element:create"
	EventElementUpdate     = "element:update"
	EventElementDelete     = "element:delete"
	EventElementBulkUpdate = "element:bulkUpdate"
)

// IBroadcaster sends an event to every client watching a repository.
type IBroadcaster interface {
	Broadcast(ctx context.Context, repositoryId int64, event string, payload interface{}) error
}
