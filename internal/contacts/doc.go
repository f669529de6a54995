// Package contacts manages contact lists: CRUD, CSV import and export, and
// bulk address verification.
package contacts
