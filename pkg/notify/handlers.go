package notify

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	broker *Broker
}

// events streams broker events to the client as server-sent events until the
// client disconnects.
func (h *handler) events(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	id, ch := h.broker.Subscribe()
	defer h.broker.Unsubscribe(id)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			_, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event.Topic, event.JSON())
			if err != nil {
				return errors.WithStack(err)
			}
			resp.Flush()
		}
	}
}
