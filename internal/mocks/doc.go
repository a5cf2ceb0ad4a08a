// Package mocks provides centralized mock implementations for testing.
//
// MockUserStore and MockBookStore are in-memory stores that behave like
// the PostgreSQL implementations: lookups return the store package's
// sentinel errors and book ISBNs are unique. MockTokenCodec and
// MockPasswordVerifier take function fields for per-test behavior.
//
//	func TestSomething(t *testing.T) {
//	    codec := &mocks.MockTokenCodec{
//	        VerifyFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	            return &auth.Claims{Subject: "admin"}, nil
//	        },
//	    }
//	    ...
//	}
package mocks
