package londoners

import "fmt"

// UpstreamError describes a non-success response from the Guesty API. The
// upstream status code and raw body are kept so handlers can mirror them to
// the caller.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (err *UpstreamError) Error() string {
	return fmt.Sprintf(`Guesty API error %d: "%s"`, err.StatusCode, err.Body)
}

// UpstreamAuthError describes a failed client-credentials token exchange.
type UpstreamAuthError struct {
	Scope      Scope
	StatusCode int
	Body       string
}

func (err *UpstreamAuthError) Error() string {
	return fmt.Sprintf(`failed to get token for scope "%s": %d "%s"`,
		err.Scope, err.StatusCode, err.Body)
}

// PersistenceError describes a failed local store write. Upstream state may
// already be changed when it occurs, there is no compensation.
type PersistenceError struct{ Cause error }

func (err *PersistenceError) Error() string {
	return fmt.Sprintf(`failed to write record: "%v"`, err.Cause)
}

func (err *PersistenceError) Unwrap() error { return err.Cause }
