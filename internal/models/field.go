package models

// Phase is the request lifecycle of one piece of business state.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Field holds a value that arrives asynchronously along with the status of
// the request producing it.
type Field[T any] struct {
	Phase Phase
	Value T
	Err   string
}

// Start marks the field as loading. A previously resolved value is kept so
// a refresh can still show it if needed.
func (f *Field[T]) Start() {
	f.Phase = Loading
	f.Err = ""
}

// Resolve stores v and marks the field ready.
func (f *Field[T]) Resolve(v T) {
	f.Phase = Ready
	f.Value = v
	f.Err = ""
}

// Fail records msg and marks the field failed.
func (f *Field[T]) Fail(msg string) {
	f.Phase = Failed
	f.Err = msg
}

// Reset returns the field to idle and drops any value.
func (f *Field[T]) Reset() {
	*f = Field[T]{}
}

// Get returns the value if the field is ready.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Phase == Ready
}
