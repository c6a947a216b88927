package collector

import "fmt"

// UpstreamRejectedError is returned when the feed answers with a result code
// other than success or "no data".
type UpstreamRejectedError struct {
	Code    string
	Message string
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("upstream rejected request (code %s): %s", e.Code, e.Message)
}

// NetworkError is a transport-level failure: relay or upstream unreachable,
// a non-200 status, or a payload that is not a feed envelope.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// resultMessages describes the documented data.go.kr result codes.
var resultMessages = map[string]string{
	"1":  "application error",
	"10": "invalid request parameter",
	"12": "no such open API service or service retired",
	"20": "service access denied",
	"22": "service request limit exceeded",
	"30": "unregistered service key",
	"31": "expired service key",
	"32": "unregistered IP",
	"99": "unknown error",
}

func resultMessage(code, msg string) string {
	if msg != "" {
		return msg
	}
	if m, ok := resultMessages[code]; ok {
		return m
	}
	return "unexpected result code"
}
