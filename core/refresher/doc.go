// Package refresher keeps the session token fresh while the user is active.
//
// Activity ticks feed a Debouncer with a fixed two second window. When the
// window closes, Check compares the token age against
//
//	RefreshInterval(t) = min(max(t*0.05, 15), 120)
//
// minutes, where t is the session timeout read from storage. An older token
// triggers a call to TokenClient.RefreshToken. At most one refresh runs at a
// time; checks arriving while it is pending are dropped. The refresh is not
// tied to the caller's cancellation, and a successful result replaces the
// token and its timestamp in one storage write.
//
//	r := refresher.New(store, refresher.NewHTTPTokenClient(httpClient, baseURL, ""),
//		refresher.WithFlags(flags),
//		refresher.WithLogger(log),
//	)
//	r.Start(ctx)
//	defer r.Stop()
//
//	r.Activity() // on every user action
//
// Checks are skipped entirely when the account is in public access mode.
package refresher
