package timedfsm

import (
	"reflect"
	"time"
)

// State is a single state of a Machine.
//
// Enter is called once when the state becomes current and returns the
// minimum time the state has to stay current before a non-forced change.
// Update and FixedUpdate are called once per tick while the state is
// current; a non-nil result is entered immediately, regardless of the
// dwell timer. Exit is called once when the state stops being current and
// must release whatever Enter acquired.
//
// Panics raised by any of these methods propagate to the caller of the
// machine method that invoked them.
type State interface {
	Enter() time.Duration
	Update() State
	FixedUpdate() State
	Exit()
}

// Namer is implemented by states that want a custom inspection name
type Namer interface {
	Name() string
}

// Changer is the part of a Machine a state may hold on to.
// The machine owns its states; a state keeps a Changer only to request
// transitions and must never manage the machine's lifetime.
type Changer interface {
	IsChangeAllowed() bool
	ChangeState(next State) bool
	ChangeStateDelayed(next State)
	ForceChangeState(next State)
}

// Base is a no-op State meant for embedding.
// It requests no dwell time and never transitions.
type Base struct{}

func (Base) Enter() time.Duration { return 0 }
func (Base) Update() State        { return nil }
func (Base) FixedUpdate() State   { return nil }
func (Base) Exit()                {}

// Funcs adapts plain functions to the State interface.
// Nil functions behave like Base.
type Funcs struct {
	StateName     string
	OnEnter       func() time.Duration
	OnUpdate      func() State
	OnFixedUpdate func() State
	OnExit        func()
}

func (f *Funcs) Enter() time.Duration {
	if f.OnEnter == nil {
		return 0
	}
	return f.OnEnter()
}

func (f *Funcs) Update() State {
	if f.OnUpdate == nil {
		return nil
	}
	return f.OnUpdate()
}

func (f *Funcs) FixedUpdate() State {
	if f.OnFixedUpdate == nil {
		return nil
	}
	return f.OnFixedUpdate()
}

func (f *Funcs) Exit() {
	if f.OnExit != nil {
		f.OnExit()
	}
}

// Name returns StateName, or "Funcs" when it is empty
func (f *Funcs) Name() string {
	if f.StateName == "" {
		return "Funcs"
	}
	return f.StateName
}

// NameOf returns the inspection name of a state.
// Namer implementations win; otherwise the type name with pointers
// stripped is used. A nil state yields "".
func NameOf(s State) string {
	if s == nil {
		return ""
	}
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
