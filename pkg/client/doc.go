// Package client implements the create-student operation against the ERP
// admin API. Success payloads are decoded into an ordered enroll.Record
// (envelopes such as {"response": {...}} are unwrapped); error payloads are
// normalised into field errors ("emailError", "/body/email", "errors": {...})
// and a general backend message, with any markup stripped.
package client
