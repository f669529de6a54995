// Package personalize substitutes recipient fields into campaign templates.
//
// Dispatch-time personalization is a fixed-vocabulary literal replacement,
// not a template language: unknown {{...}} tokens pass through verbatim and
// a malformed template can never fail a send. The richer Liquid renderer in
// preview.go exists only for campaign-builder previews.
package personalize

import (
	"strings"

	"github.com/emailcraft/studio/internal/domain"
)

// Token literals recognized at dispatch time. The set is fixed: the AI
// drafting prompt is constrained to these and the UI documents them.
const (
	TokenFirstName = "{{firstName}}"
	TokenLastName  = "{{lastName}}"
	TokenEmail     = "{{email}}"
	TokenCompany   = "{{company}}"
	TokenPosition  = "{{position}}"
)

// Tokens returns the personalization vocabulary in documentation order.
func Tokens() []string {
	return []string{TokenFirstName, TokenLastName, TokenEmail, TokenCompany, TokenPosition}
}

// Personalize replaces every occurrence of each recognized token with the
// contact's field value. Empty fields substitute as the empty string --
// never the literal token, never "undefined". Pure function: no I/O,
// deterministic for a given (template, contact) pair.
func Personalize(template string, c domain.Contact) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	r := strings.NewReplacer(
		TokenFirstName, c.FirstName,
		TokenLastName, c.LastName,
		TokenEmail, c.Email,
		TokenCompany, c.Company,
		TokenPosition, c.Position,
	)
	return r.Replace(template)
}
