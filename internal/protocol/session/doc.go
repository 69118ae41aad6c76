// Package session composes the link codecs into a host-side session.
//
// Ownership boundary:
// - outbound framing of RPC requests and HCI packets
// - inbound alignment, header validation and routing by interface
// - request/response correlation by uid
//
// The transport itself is injected as a WriteFunc; reading, timeouts and
// retries stay with the caller.
package session
