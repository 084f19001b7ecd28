// Package resilience groups the fault tolerance helpers used by every
// external collaborator client.
//
// Clients combine the two subpackages the same way: retry on the outside,
// circuit breaker on the inside, so a tripped breaker short-circuits the
// remaining attempts.
//
//	result, err := retry.Do(ctx, retry.LookupAPIConfig(), func() (Result, error) {
//	    return circuitbreaker.Call(cb, func() (Result, error) {
//	        return c.doLookup(ctx, query)
//	    })
//	})
package resilience
