// Package models defines the core domain models for tandem.
//
// # Models
//
//   - User: someone who signed in with a magic link
//   - Group: a named set of members sharing expenses, joined via invite code
//   - Member: a user's membership of one group, with a role
//   - Expense: a single spend, paid by one member and split equally across
//     a non-empty set of members
//
// Balances are not modelled here; they are derived on every read by the
// ledger package.
//
// # Construction
//
// Records entering the system go through the New* constructors, which
// enforce the record invariants and return a *ValidationError instead of
// letting a malformed value propagate. Relationships are expressed with ID
// strings rather than pointers. Members and expenses refer to people by
// user ID.
package models
