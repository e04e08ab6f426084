package watcher

// Kind identifies the filesystem change reported by a subscription
type Kind string

// Event kinds
const (
	Add       Kind = "add"
	Change    Kind = "change"
	Unlink    Kind = "unlink"
	UnlinkDir Kind = "unlinkDir"
)

// Event is a single change notification, Path is relative to the watcher cwd
type Event struct {
	Kind Kind
	Path string
}
