// Package monitor forwards client-side errors to an error-monitoring backend.
//
// Client.Notify follows the (error, callback) contract of common error
// reporters: the callback sets severity, user and metadata on the Event, then
// OnError filters decide whether the event is delivered to the Sink.
//
//	client := monitor.New(monitor.NewLogSink(log), monitor.WithAppVersion("1.4.0"))
//	client.Notify(ctx, err, func(ev *monitor.Event) {
//		ev.Severity = monitor.SeverityError
//		ev.SetUser(accountID, username)
//		ev.AddMetadata("status", 502)
//	})
//
// ShouldIgnore is always installed as the first filter. It drops YAML parser
// errors, aborted requests and anything raised by the embedded editor workers.
package monitor
