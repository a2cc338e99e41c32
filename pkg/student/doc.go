// Package student defines the Add-Student draft record: its fifteen string
// fields keyed by the wire names the ERP service expects, copy-on-write field
// updates, and the client-side gate that keeps incomplete drafts from being
// submitted.
package student
