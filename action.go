package simplestate

// Message is anything that can be passed to Dispatch.
// It is implemented by Action and Effect only.
type Message interface {
	isMessage()
}

// Action is a plain tagged message that goes through middleware and reducers
type Action struct {
	Type    string
	Payload any
}

func (Action) isMessage() {}

// Effect is a message that runs immediately instead of being reduced.
// It receives the store's dispatch function and the current state, and its
// return value becomes the return value of Dispatch. Effects bypass
// middleware and reducers entirely.
type Effect[S any] func(dispatch Dispatch, state S) any

func (Effect[S]) isMessage() {}

// Dispatch sends a message to a store
type Dispatch func(msg Message) any

// NewAction creates an action with an optional payload
func NewAction(actionType string, payload ...any) Action {
	a := Action{Type: actionType}
	if len(payload) > 0 {
		a.Payload = payload[0]
	}
	return a
}
