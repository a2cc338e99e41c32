// Package terminal runs the Add Student form as an interactive terminal
// session on top of an enroll.Workflow.
package terminal
