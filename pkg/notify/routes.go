package notify

import "github.com/labstack/echo/v4"

// RegisterRoutesWithGroup registers the event stream on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, broker *Broker) {
	h := &handler{broker: broker}

	g.GET("", h.events)
}
