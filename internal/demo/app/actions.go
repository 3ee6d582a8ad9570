package app

import (
	"github.com/aretw0/loom/internal/demo/counter"
	"github.com/aretw0/loom/internal/demo/favorites"
	"github.com/aretw0/loom/internal/demo/primemodal"
	"github.com/aretw0/loom/pkg/registry"
)

// Actions returns the registry of actions a client may send by name.
// Responses produced by effects are not registered.
func Actions() *registry.Registry[Action] {
	return registry.New[Action]().
		Register("incr", registry.Constant[Action](Counter{counter.Incr{}})).
		Register("decr", registry.Constant[Action](Counter{counter.Decr{}})).
		Register("nth-prime", registry.Constant[Action](Counter{counter.NthPrimeRequested{}})).
		Register("dismiss-alert", registry.Constant[Action](Counter{counter.NthPrimeDismissed{}})).
		Register("is-this-prime", registry.Constant[Action](Counter{counter.IsThisPrimeRequested{}})).
		Register("close-modal", registry.Constant[Action](Counter{counter.IsThisPrimeDismissed{}})).
		Register("check-prime", registry.Constant[Action](PrimeModal{primemodal.StartLoadingIsPrime{}})).
		Register("save-favorite", registry.Constant[Action](PrimeModal{primemodal.SaveFavorite{}})).
		Register("remove-favorite", registry.Constant[Action](PrimeModal{primemodal.RemoveFavorite{}})).
		Register("delete-favorites", registry.Payload(func(d favorites.DeleteAt) Action { return Favorites{d} })).
		Register("load-favorites", registry.Constant[Action](Favorites{favorites.LoadRequested{}})).
		Register("save-favorites", registry.Constant[Action](Favorites{favorites.SaveRequested{}}))
}
