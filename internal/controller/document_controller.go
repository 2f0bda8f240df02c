package controller

import (
	"path/filepath"

	"legal-aid-be/pkg/storage/local"

	"github.com/gofiber/fiber/v2"
)

// IDocumentController serves files of the local document store. The signed
// token in the query string is the only credential.
type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Download(ctx *fiber.Ctx) error
}

type documentController struct {
	store *local.Store
}

func NewDocumentController(store *local.Store) IDocumentController {
	return &documentController{store: store}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Get("/documents/download", c.Download)
}

func (c *documentController) Download(ctx *fiber.Ctx) error {
	token := ctx.Query("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing token")
	}

	path, err := c.store.Resolve(token)
	if err != nil {
		return err
	}
	return ctx.Download(path, filepath.Base(path))
}
