package khojapi

import "errors"

var (
	// ErrTransport wraps network and connection failures.
	ErrTransport = errors.New("khojapi: transport failure")

	// ErrServerRejected marks a batch that reached the server but came back
	// with a non-success status.
	ErrServerRejected = errors.New("khojapi: server rejected batch")

	// ErrCircuitOpen is returned once the consecutive-failure counter passed
	// the abort threshold. It is process-fatal: the caller must exit, not
	// retry.
	ErrCircuitOpen = errors.New("khojapi: too many consecutive batch failures")
)
