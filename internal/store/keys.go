// internal/store/keys.go
package store

import "strings"

// Key layout of the document tree. Slashes keep the hierarchy readable in
// redis-cli and mirror the paths the client apps address.
const (
	userPrefix        = "users/"
	counterPrefix     = "counters/"
	uidLookupPrefix   = "uidToMemberID/"
	emailLookupPrefix = "emailToMemberID/"

	// ReceiptCounterNamespace is the flat namespace for receipt numbers.
	// Unlike member-ID namespaces it never resets on year rollover.
	ReceiptCounterNamespace = "receipt_counter"
)

// UserKey returns the document key for a member record.
func UserKey(memberID string) string {
	return userPrefix + memberID
}

// CounterKey returns the counter document key for an identifier namespace.
func CounterKey(namespace string) string {
	return counterPrefix + namespace
}

// UIDKey returns the lookup key mapping an auth uid to a member id.
func UIDKey(uid string) string {
	return uidLookupPrefix + uid
}

// EmailKey returns the lookup key for an email address. Dots are not legal
// in the original document paths, so they are stored as commas.
func EmailKey(email string) string {
	return emailLookupPrefix + EncodeEmail(email)
}

// EncodeEmail converts an email address to its key-safe form.
func EncodeEmail(email string) string {
	return strings.ReplaceAll(strings.ToLower(email), ".", ",")
}
