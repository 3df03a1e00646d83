// Package redis connects to Redis and exposes it as a session.Store.
//
// Connect validates the URL (redis:// or rediss://), opens a go-redis client
// and pings it with retries before handing it back. Healthcheck returns a
// probe suitable for readiness checks. SessionStore keeps the console's
// session keys as plain Redis strings so several client processes on one
// machine share one session:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	store := redis.NewSessionStore(client, "sessionguard:")
//
// Token replacement goes through MSET, which Redis applies as one atomic
// operation, preserving the session package's whole-value replace rule.
package redis
