// Package enroll implements the Add-Student submission workflow. A Form holds
// the draft, Workflow.Submit issues one asynchronous create-request whose
// Outcome lands in a single-slot Slot, and Workflow.Handle consumes that
// outcome exactly once: failures are surfaced through the Presenter with the
// draft preserved (email aside, see EmailResetPolicy), successes are merged
// with the service record into a one-time credential Summary before the form
// is reset.
package enroll
