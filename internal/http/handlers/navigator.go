package handlers

import (
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
)

const headerRefresh = "Refresh"

// refreshNavigator defers navigation to the browser through the Refresh
// header of the page being rendered. Leaving the page drops it.
type refreshNavigator struct{ c *fiber.Ctx }

func (n refreshNavigator) NavigateAfter(delay time.Duration, path string) {
	secs := int(math.Ceil(delay.Seconds()))
	n.c.Set(headerRefresh, fmt.Sprintf("%d; url=%s", secs, path))
}

// cancel drops a pending navigation when its page is not shown.
func (n refreshNavigator) cancel() {
	n.c.Response().Header.Del(headerRefresh)
}

// showOrCancel renders the page a navigation was scheduled on; a page that
// fails to render takes its pending navigation with it.
func showOrCancel(nav refreshNavigator, render func() error) error {
	if err := render(); err != nil {
		nav.cancel()
		return err
	}
	return nil
}
