// Package common holds what both ends of the RPC system have to agree on:
// the message protocol, the configuration structs and the logging facade.
//
// Key Components:
//
//   - Message: the single struct every request and response is expressed
//     in. Constructors exist for each operation so the field conventions
//     stay in one place. Error responses carry the database's typed error
//     code, which lets clients rebuild errors with db.CodeOf semantics
//     intact.
//
//   - MessageType: enumerates the key-value operations plus the control
//     messages (info, ping).
//
//   - ServerConfig / ClientConfig: everything a server (hosted stores,
//     engine parameters, endpoint, metrics) or a client (endpoints,
//     timeouts, retries, socket tuning) needs to start.
//
//   - Logger: a named, printf-style facade over log/slog, so packages log
//     through one configurable backend (text or JSON) without carrying slog
//     plumbing around.
package common
