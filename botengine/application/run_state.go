package application

import (
	"time"

	"github.com/AzielCF/az-devocional/botengine/domain"
)

// RunAction es lo que el driver debe hacer tras observar un estado
type RunAction int

const (
	ActionPoll RunAction = iota
	ActionFetchReply
	ActionAbort
	ActionTimeout
)

func (a RunAction) String() string {
	switch a {
	case ActionPoll:
		return "poll"
	case ActionFetchReply:
		return "fetch_reply"
	case ActionAbort:
		return "abort"
	case ActionTimeout:
		return "timeout"
	}
	return "unknown"
}

// Step decides the next action for a run given its last observed status and
// the time spent polling. A terminal status wins over the deadline.
func Step(status domain.RunStatus, elapsed, deadline time.Duration) RunAction {
	switch status {
	case domain.RunCompleted:
		return ActionFetchReply
	case domain.RunFailed, domain.RunExpired, domain.RunCancelled, domain.RunIncomplete:
		return ActionAbort
	case domain.RunRequiresAction:
		// Los assistants no tienen tools registradas
		return ActionAbort
	case domain.RunQueued, domain.RunInProgress, domain.RunCancelling:
	default:
		// Estado desconocido o error transitorio de lectura: seguir esperando
	}

	if elapsed >= deadline {
		return ActionTimeout
	}
	return ActionPoll
}
