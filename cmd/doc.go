// Package cmd wires up the tkv command tree. The root command carries the
// global serializer and transport flags; everything else lives in
// subpackages:
//
//   - serve: runs the server
//   - kv: client commands for talking to a running server (get, set, ...)
//   - util: flag and config plumbing shared by the client commands
//
// Run tkv -help for the full list.
package cmd
