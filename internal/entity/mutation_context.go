package entity

// SyncOrigin marks writes issued by the library sync machinery. Such writes
// never auto-detach and never propagate further.
type SyncOrigin struct {
	IsLibrarySync bool
}

// MutationContext is passed explicitly to every mutating operation.
type MutationContext struct {
	UserId       int64
	RepositoryId *int64 // scope of the caller, nil when unrestricted
	Sync         SyncOrigin
}

func (c MutationContext) IsLibrarySync() bool {
	return c.Sync.IsLibrarySync
}

// AsLibrarySync returns a copy of c tagged as a sync-origin write.
func (c MutationContext) AsLibrarySync() MutationContext {
	c.Sync = SyncOrigin{IsLibrarySync: true}
	return c
}

// Unscoped drops the repository restriction; used when a write crosses
// into another repository on behalf of the linking service.
func (c MutationContext) Unscoped() MutationContext {
	c.RepositoryId = nil
	return c
}
