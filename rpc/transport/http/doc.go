// Package http carries RPC messages over plain HTTP. Each request becomes a
// POST to /{storeID} with the serialized message as the body, and the
// response body carries the serialized reply.
//
// It is the simplest transport to operate: it passes through proxies and
// load balancers unchanged and can be inspected with curl. The cost is one
// request per round trip, so the stream transports (tcp, unix) outperform it
// under load.
//
// Key Components:
//
//   - httpClientTransport: posts requests to the configured endpoints,
//     rotating through them round-robin, and retries failed sends.
//
//   - httpServerTransport: a net/http server that parses the store ID out of
//     the URL path and hands the body to the registered handler. When the
//     log level is debug, a middleware logs method, path, status and
//     duration for every request.
//
// Thread Safety:
//
//	Both sides may be used concurrently. The client's endpoint rotation uses
//	an atomic counter; the underlying http.Client pools connections itself.
package http
