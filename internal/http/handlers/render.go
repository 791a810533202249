package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
)

// NewViews loads the page templates under dir with the helpers they use.
func NewViews(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("plus1", func(i int) int { return i + 1 })
	engine.AddFunc("money", func(f float64) string { return fmt.Sprintf("%.2f", f) })
	return engine
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Token the CSRF middleware put into Locals; the cookie is the fallback.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}
