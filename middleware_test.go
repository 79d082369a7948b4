package simplestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMiddleware(t *testing.T) {
	allow := func(Action, counter, Peek[counter]) Verdict { return Continue }
	deny := func(Action, counter, Peek[counter]) Verdict { return Veto }

	tests := []struct {
		name        string
		middlewares []Middleware[counter]
		want        bool
		wantIndex   int
	}{
		{name: "empty", want: true, wantIndex: -1},
		{name: "all continue", middlewares: []Middleware[counter]{allow, allow}, want: true, wantIndex: -1},
		{name: "first vetoes", middlewares: []Middleware[counter]{deny, allow}, want: false, wantIndex: 0},
		{name: "last vetoes", middlewares: []Middleware[counter]{allow, allow, deny}, want: false, wantIndex: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peek := func() counter { return counter{} }
			assert.Equal(t, tt.want, RunMiddleware(tt.middlewares, NewAction("INC"), counter{}, peek))
			assert.Equal(t, tt.wantIndex, runChain(tt.middlewares, NewAction("INC"), counter{}, peek))
		})
	}
}

func TestRunMiddleware_StopsAtFirstVeto(t *testing.T) {
	var calls []string
	spy := func(name string, v Verdict) Middleware[counter] {
		return func(Action, counter, Peek[counter]) Verdict {
			calls = append(calls, name)
			return v
		}
	}

	ok := RunMiddleware([]Middleware[counter]{spy("a", Continue), spy("b", Veto), spy("c", Continue)},
		NewAction("INC"), counter{}, func() counter { return counter{} })

	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestPreview_ComputesOnce(t *testing.T) {
	calls := 0
	p := &preview[counter]{compute: func() counter {
		calls++
		return counter{Count: 7}
	}}

	assert.Equal(t, 0, calls)
	assert.Equal(t, counter{Count: 7}, p.peek())
	assert.Equal(t, counter{Count: 7}, p.peek())
	assert.Equal(t, 1, calls)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "veto", Veto.String())
	assert.Equal(t, "unknown", Verdict(9).String())
}
