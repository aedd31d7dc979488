// Package httputil provides HTTP plumbing shared by the record source, the
// submission client and the profile validator.
//
// # Overview
//
//   - [Client]: GET with default headers, status mapping and retries
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Retry] wraps an operation with automatic retry for transient failures:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}  // Will retry
//	    }
//	    if resp.StatusCode == 404 {
//	        return errors.New("not found")  // Won't retry
//	    }
//	    return nil
//	})
//
// Only errors wrapped in [RetryableError] trigger retries. The delay doubles
// after each attempt.
//
// # Status mapping
//
// [Client] maps responses onto pkg/errors codes: network failures and 5xx
// become retryable NETWORK_ERROR, 404 becomes NOT_FOUND, and any other
// non-2xx status becomes UPSTREAM_STATUS.
package httputil
