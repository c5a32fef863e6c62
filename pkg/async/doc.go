// Package async provides generic helpers for running computations asynchronously and
// waiting for their completion.
//
// The package is centred around the generic type Future that represents the eventual
// result of an asynchronous operation.  A Future is obtained by calling Async, which
// starts the supplied function in its own goroutine and immediately returns a *Future.
// The caller can then wait with Await, block with a timeout using AwaitWithTimeout, or
// poll with IsComplete.
//
// For coordinating groups of tasks, WaitAll collects every result and stops at the
// first error, while SettleAll always waits for the whole group and reports each
// outcome individually.  SettleAll is the right tool for fan-out work such as
// delivering one notification to many recipients, where a single failed delivery must
// not mask the rest.
//
// Panics inside a task are recovered and reported as an error wrapping ErrPanicked,
// so a crashing callback settles its Future instead of crashing the process.
//
// # Usage
//
//	future := async.Async(ctx, 42, func(_ context.Context, v int) (string, error) {
//	    return fmt.Sprintf("value is %d", v), nil
//	})
//
//	res, err := future.Await()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res)
//
// Futures are lightweight wrappers around goroutines and channels.  Callers that
// fan out very wide should batch their work rather than spawning an unbounded
// number of goroutines at once.
package async
