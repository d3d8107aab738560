package domain

// Result is what a fetch delivers to the view, success or not.
//
// IsError is set for network and timeout failures. Err carries the cause
// and is ErrEmptyResult for the soft "nothing found" case, where IsError
// stays false.
type Result struct {
	Place   Place    `json:"place"`
	Kind    ViewKind `json:"kind"`
	Payload Payload  `json:"payload"`
	IsError bool     `json:"is_error"`
	Message string   `json:"message,omitempty"`
	Err     error    `json:"-"`
}

// Empty reports whether the result is the soft "nothing found" placeholder.
func (r Result) Empty() bool {
	return !r.IsError && r.Err == ErrEmptyResult
}
