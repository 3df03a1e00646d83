// Package interceptor implements the global handler applied to every completed
// HTTP response.
//
// Classify maps (status, content type, body) to a Decision:
//
//   - 2xx passes.
//   - JSON 401 or 400 whose responseMessages contain NOT_WHITELISTED_IP shows
//     that message and stores it under NOT_WHITELISTED_IP_MESSAGE. Only a 401
//     also logs out.
//   - Otherwise a JSON 401 or 400 with UNAUTHORIZED shows the message, stores
//     it under UNAUTHORIZED and logs out.
//   - Any other JSON 401 logs out silently.
//   - JSON 429 shows the body message or RateLimitFallbackMessage.
//   - Non-JSON 401 logs out silently. Everything else passes.
//
// Handler applies the decision through a Context: ShowError, then the storage
// write, then Logout, which runs at most once per response and does not depend
// on the notifier. Bodies that cannot be read or decoded are reported to the
// monitor with the status, URL, username and account ID and are otherwise
// ignored.
//
// Responses obtained outside the shared client can be routed through the same
// handler by publishing a PromiseAPIResponse on an event transport that has
// Handler.EventHandler registered.
package interceptor
