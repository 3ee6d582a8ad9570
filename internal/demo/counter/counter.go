// Package counter is the counter screen: increment, decrement and an alert
// with the n-th prime for the current count.
package counter

import (
	"context"
	"fmt"

	"github.com/aretw0/loom/internal/demo/primes"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/reducer"
)

// State is the counter screen state.
type State struct {
	AlertNthPrime         *string `json:"alert_nth_prime,omitempty"`
	Count                 int     `json:"count"`
	NthPrimeButtonEnabled bool    `json:"nth_prime_button_enabled"`
	PrimeModalShown       bool    `json:"prime_modal_shown"`
}

// NewState returns the state the screen starts in.
func NewState() State {
	return State{NthPrimeButtonEnabled: true}
}

// Action is one of the counter actions below.
type Action interface {
	counterAction()
}

type (
	// Incr adds one to the count.
	Incr struct{}
	// Decr subtracts one from the count.
	Decr struct{}
	// NthPrimeRequested starts the n-th prime lookup for the current count.
	NthPrimeRequested struct{}
	// NthPrimeResponse carries the lookup result. Prime is nil when none was found.
	NthPrimeResponse struct {
		Prime *int
	}
	// NthPrimeDismissed closes the alert.
	NthPrimeDismissed struct{}
	// IsThisPrimeRequested opens the prime modal.
	IsThisPrimeRequested struct{}
	// IsThisPrimeDismissed closes the prime modal.
	IsThisPrimeDismissed struct{}
)

func (Incr) counterAction()                 {}
func (Decr) counterAction()                 {}
func (NthPrimeRequested) counterAction()    {}
func (NthPrimeResponse) counterAction()     {}
func (NthPrimeDismissed) counterAction()    {}
func (IsThisPrimeRequested) counterAction() {}
func (IsThisPrimeDismissed) counterAction() {}

// Environment holds the executors the lookup runs and reports on.
type Environment struct {
	Work effect.Executor
	Main effect.Executor
}

// Reducer returns the counter reducer for env.
func Reducer(env Environment) reducer.Reducer[State, Action] {
	return func(s *State, action Action) []*effect.Effect[Action] {
		switch a := action.(type) {
		case Incr:
			s.Count++
		case Decr:
			s.Count--
		case NthPrimeRequested:
			s.NthPrimeButtonEnabled = false
			return []*effect.Effect[Action]{
				NthPrime(s.Count).RunOn(env.Work).ReceiveOn(env.Main),
			}
		case NthPrimeResponse:
			s.AlertNthPrime = nil
			if a.Prime != nil {
				alert := fmt.Sprintf("The %s prime is %d", primes.Ordinal(s.Count), *a.Prime)
				s.AlertNthPrime = &alert
			}
			s.NthPrimeButtonEnabled = true
		case NthPrimeDismissed:
			s.AlertNthPrime = nil
		case IsThisPrimeRequested:
			s.PrimeModalShown = true
		case IsThisPrimeDismissed:
			s.PrimeModalShown = false
		}
		return nil
	}
}

// NthPrime looks up the n-th prime and always answers with NthPrimeResponse.
func NthPrime(n int) *effect.Effect[Action] {
	return effect.New(func(ctx context.Context, send func(Action)) {
		p, ok := primes.Nth(ctx, n)
		if !ok {
			send(NthPrimeResponse{})
			return
		}
		send(NthPrimeResponse{Prime: &p})
	})
}
