// Package sending delivers campaigns to recipients.
//
// The Dispatcher walks a contact list sequentially: validate, personalize,
// send. One bad address never aborts the batch; every skip and failure is
// recorded as a diagnostic string in the dispatch result. Transports (SMTP,
// SES) implement the Sender interface so the dispatcher and its tests never
// touch the network directly.
package sending
