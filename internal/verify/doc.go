// Package verify implements recipient-address validation: a permissive
// syntactic check followed by an MX lookup on the address domain.
//
// Validation outcomes are values, never errors. An address that fails the
// check is reported as {IsValid: false, Reason: ...} so a batch send can
// skip it and continue; the validator has no error return at all.
//
// MX presence is a deliverability heuristic, not a guarantee: a domain with
// mail exchangers can still reject the recipient at SMTP time.
package verify
