package osc

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Method is an interface for OSC Methods.
type Method interface {
	HandleMessage(msg *Message)
}

// MethodFunc implements the Method interface. Type definition for an OSC Method function.
type MethodFunc func(msg *Message)

// HandleMessage calls itself with the given OSC Message. Implements the Method interface.
func (f MethodFunc) HandleMessage(msg *Message) {
	f(msg)
}

type route struct {
	signature string
	method    Method
}

// Dispatcher handles the dispatching of received OSC Packets to Methods for
// their given Address and type tag signature.
type Dispatcher struct {
	mu      sync.RWMutex
	methods map[string][]route

	// Unhandled, if set, receives every message no method accepted.
	Unhandled MethodFunc

	// IgnoreTimetags dispatches bundle elements as soon as the bundle
	// arrives, whatever its time tag says.
	IgnoreTimetags bool
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{methods: make(map[string][]route)}
}

// AddMethod adds a new OSC Method for the given OSC Address. signature lists
// the argument type tags the method accepts without the leading comma ("m",
// "if"); an empty signature accepts any arguments.
func (d *Dispatcher) AddMethod(addr, signature string, method Method) error {
	if !strings.HasPrefix(addr, "/") {
		return fmt.Errorf("AddMethod: OSC address must start with '/': %q", addr)
	}

	if strings.ContainsAny(addr, "*?,[]{}# ") {
		return fmt.Errorf("AddMethod: OSC Method may not contain any characters in \"*?,[]{}# \"")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.methods == nil {
		d.methods = make(map[string][]route)
	}

	for _, r := range d.methods[addr] {
		if r.signature == signature {
			return fmt.Errorf("AddMethod: OSC Method %s,%s exists already", addr, signature)
		}
	}

	d.methods[addr] = append(d.methods[addr], route{signature: signature, method: method})
	return nil
}

// AddMethodFunc allows you to just pass a MethodFunc.
func (d *Dispatcher) AddMethodFunc(addr, signature string, method MethodFunc) error {
	return d.AddMethod(addr, signature, method)
}

// Dispatch dispatches OSC Packets. Unless IgnoreTimetags is set, bundle
// elements whose time tag lies in the future are dispatched once it expires;
// everything else is dispatched synchronously and in order.
func (d *Dispatcher) Dispatch(packet Packet) error {
	switch p := packet.(type) {
	default:
		return fmt.Errorf("dispatch: invalid Packet: %T", p)

	case *Message:
		return d.dispatchMessage(p)

	case *Bundle:
		if wait := p.Timetag.ExpiresIn(); wait > 0 && !d.IgnoreTimetags {
			time.AfterFunc(wait, func() {
				_ = d.dispatchElements(p.Elements)
			})
			return nil
		}
		return d.dispatchElements(p.Elements)
	}
}

func (d *Dispatcher) dispatchElements(elems []Packet) error {
	var firstErr error
	for _, elem := range elems {
		if err := d.Dispatch(elem); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Dispatcher) dispatchMessage(msg *Message) error {
	sig := msg.Signature()
	handled := false

	d.mu.RLock()
	if !strings.ContainsAny(msg.Address, "*?[]{}") {
		// Plain addresses are the common case and need no pattern matching.
		handled = invoke(d.methods[msg.Address], sig, msg)
	} else {
		r, err := getRegEx(msg.Address)
		if err != nil {
			d.mu.RUnlock()
			return fmt.Errorf("dispatch: invalid address pattern %q: %w", msg.Address, err)
		}
		for addr, routes := range d.methods {
			if r.MatchString(addr) && invoke(routes, sig, msg) {
				handled = true
			}
		}
	}
	d.mu.RUnlock()

	if !handled && d.Unhandled != nil {
		d.Unhandled(msg)
	}
	return nil
}

func invoke(routes []route, sig string, msg *Message) bool {
	handled := false
	for _, r := range routes {
		if r.signature == "" || r.signature == sig {
			r.method.HandleMessage(msg)
			handled = true
		}
	}
	return handled
}

// getRegEx translates an OSC address pattern into an anchored regular
// expression. '*' and '?' never match across a '/'.
func getRegEx(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteByte('^')

	inBraces := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '*':
			sb.WriteString("[^/]*")
		case c == '?':
			sb.WriteString("[^/]")
		case c == '[':
			sb.WriteByte('[')
			if i+1 < len(pattern) && pattern[i+1] == '!' {
				sb.WriteByte('^')
				i++
			}
		case c == ']' || c == '-':
			sb.WriteByte(c)
		case c == '{':
			inBraces = true
			sb.WriteString("(?:")
		case c == '}':
			inBraces = false
			sb.WriteByte(')')
		case c == ',' && inBraces:
			sb.WriteByte('|')
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	sb.WriteByte('$')
	return regexp.Compile(sb.String())
}
