package prompt

import (
	"fmt"
	"sync"
)

// promptElement is the terminal-side element handle for one field. The
// form seeds initial values through SetValue and signals validation
// failures through Focus; the runner turns a pending focus request into
// a re-prompt of the same field.
type promptElement struct {
	name string

	mu       sync.Mutex
	last     any
	focusReq bool
}

func (el *promptElement) Value() any {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.last
}

func (el *promptElement) SetValue(value any) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.last = value
}

func (el *promptElement) Focus() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.focusReq = true
}

// takeFocusRequest returns whether a focus request is pending and
// clears it.
func (el *promptElement) takeFocusRequest() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	req := el.focusReq
	el.focusReq = false
	return req
}

// displayValue renders the element value as the prompt default.
func (el *promptElement) displayValue() string {
	v := el.Value()
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
