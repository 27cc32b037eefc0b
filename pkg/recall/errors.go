package recall

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common recall errors
var (
	// ErrIndexNotReady indicates the scenario's vector index is absent or
	// still populating.
	ErrIndexNotReady = errors.New("vector index not ready")

	// ErrInvalidParameter indicates a caller-supplied parameter is out of
	// range or not part of the accepted schema.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// Error is a structured recall error carrying the operation that failed and
// any identifying context (index name, label, filter key).
type Error struct {
	// Op is the operation that failed, e.g. "similar", "identify risks".
	Op string

	// Kind is the sentinel this error maps onto, if any.
	Kind error

	// Err is the underlying cause.
	Err error

	// Context holds identifying key-value pairs.
	Context map[string]any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("recall ")
	b.WriteString(e.Op)
	if len(e.Context) > 0 {
		b.WriteString(" (")
		first := true
		for _, key := range sortedKeys(e.Context) {
			if !first {
				b.WriteString(", ")
			}
			first = false
			fmt.Fprintf(&b, "%s=%v", key, e.Context[key])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	return b.String()
}

// Unwrap exposes both the sentinel kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// opErr builds a structured error for op with alternating key, value context.
func opErr(op string, kind, cause error, kv ...any) *Error {
	e := &Error{Op: op, Kind: kind, Err: cause}
	if len(kv) > 0 {
		e.Context = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Context[fmt.Sprintf("%v", kv[i])] = kv[i+1]
		}
	}
	return e
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
