package guard

// Result statuses.
const (
	// StatusFailed marks a handled failure; Error carries a generic
	// message and the detail lives only in the query log.
	StatusFailed = 0

	// StatusOK marks a successful operation.
	StatusOK = 1
)

// genericFailureMessage is the only error text a caller ever receives.
// Schema names, SQL fragments, and driver errors stay in the log.
const genericFailureMessage = "operation failed"

// Result is the uniform envelope returned by every Store operation.
type Result struct {
	Status       int    `json:"status"`
	Data         any    `json:"data,omitempty"`
	Error        string `json:"error,omitempty"`
	AffectedRows int64  `json:"affected_rows,omitempty"`
	InsertID     int64  `json:"insert_id,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// failed builds the generic failure envelope.
func failed() Result {
	return Result{Status: StatusFailed, Error: genericFailureMessage}
}
