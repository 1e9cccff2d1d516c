// Package token manages access-token and refresh-token issuance and parsing
// using a shared-secret HMAC signature and strict validation semantics.
//
// Parsing is ordered: a token is rejected as malformed before its signature
// is checked, and its signature is verified before any claim (including
// expiry) is trusted. No claim from an unverified token ever reaches a
// caller.
package token
