// Package async provides a small generic Future for running one computation
// in the background and observing whether it is still in flight.
//
// # Usage
//
//	future := async.Async(ctx, accountID, func(ctx context.Context, id string) (string, error) {
//		return client.RefreshToken(ctx, id)
//	})
//
//	// Non-blocking in-flight check
//	if !future.IsComplete() {
//		return // a refresh is already running
//	}
//
//	token, err := future.Await()
//
// Using timeout:
//
//	token, err := future.AwaitWithTimeout(5 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//		log.Println("refresh still running")
//	}
//
// A nil *Future reports IsComplete() == true, so a zero-valued field can serve
// as "nothing in flight". Panics inside the computation are recovered and
// surface as ErrPanic from Await.
package async
