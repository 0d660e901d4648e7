package navigation

import (
	"sync"

	"go.uber.org/zap"
)

// Listener is notified after the active route changes.
type Listener func(from, to Route)

// Controller owns the active route. The zero value is not usable; use NewController.
type Controller struct {
	mu        sync.Mutex
	current   Route
	listeners []Listener
	logger    *zap.Logger
}

// NewController starts on the Analyze screen.
func NewController(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{current: Analyze{}, logger: logger}
}

// Current returns the active route.
func (c *Controller) Current() Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Screen returns the name of the active screen.
func (c *Controller) Screen() Screen {
	return c.Current().Screen()
}

// OnChange registers a listener for route changes.
func (c *Controller) OnChange(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Navigate makes route the active route. Navigating to the route that is already
// active changes nothing and reports false.
func (c *Controller) Navigate(route Route) bool {
	if route == nil {
		return false
	}

	c.mu.Lock()
	from := c.current
	if from == route {
		c.mu.Unlock()
		return false
	}
	c.current = route
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	c.logger.Debug("Navigate",
		zap.String("from", string(from.Screen())),
		zap.String("to", string(route.Screen())),
	)
	for _, l := range listeners {
		l(from, route)
	}
	return true
}

// NavigateTo navigates by screen name. EditProfile needs params.Profile; without it
// the active route is left as is and ErrProfileRequired is returned.
func (c *Controller) NavigateTo(screen Screen, params *Params) error {
	route, err := RouteFor(screen, params)
	if err != nil {
		return err
	}
	c.Navigate(route)
	return nil
}
