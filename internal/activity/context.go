package activity

import "github.com/rescale-labs/gateway/internal/localhost"

// Context is the single-owner holder the ActivityManager moves between
// activities (spec.md §2, §9 "Ownership of Context"). Only the
// activity that currently holds it may use Term; an activity must not
// retain a reference to Context past its own on_destroy.
type Context struct {
	Local  *localhost.Localhost
	Term   Terminal
	Editor Editor
}
