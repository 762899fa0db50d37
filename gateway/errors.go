package gateway

import "errors"

var (
	// ErrDuplicateSession is returned when a client-supplied session id
	// is already registered.
	ErrDuplicateSession = errors.New("session id already registered")

	// ErrDuplicateToken is returned when a progress token is already
	// tracked by an in-flight tool call.
	ErrDuplicateToken = errors.New("progress token already in flight")

	// ErrUnknownTool is returned for tool names absent from the schema
	// registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownResource is returned for resource URIs outside the
	// autogen:// namespace.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrUnknownPrompt is returned for prompt names absent from the
	// schema registry.
	ErrUnknownPrompt = errors.New("unknown prompt")
)
