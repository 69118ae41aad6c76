// Package protocol owns the ESP-Hosted wire contract shared by every layer.
//
// Ownership boundary:
// - error kinds returned by all codec packages
// - co-processor error codes carried inside responses
// - transport identities and their frame size limits
//
// Layer packages:
// - varint: LEB128 and protobuf tag primitives
// - frame: 12-byte header, checksum, sequence counter
// - tlv: serial endpoint wrapping
// - rpc: envelope codec and field walker
// - schema: envelope semantic checks
// - resync: misaligned receive recovery
// - hci: HCI event and advertising data parser
// - session: send/receive pipeline over an injected transport
package protocol
