/*
Package resilience provides the circuit breaker that guards calls to the
durable blob store.

# Usage

	breaker := resilience.New("blobstore", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, blobstore.ErrNotFound)
		},
	})

	err := breaker.Do(func() error {
		return store.Save(ctx, key, data)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
