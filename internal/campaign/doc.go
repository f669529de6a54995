// Package campaign manages campaigns and runs their dispatch: CRUD,
// builder previews, and the send operation with its precondition checks.
package campaign
