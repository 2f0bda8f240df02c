package controller

import (
	"fmt"
	"io"
	"time"

	"legal-aid-be/internal/dto"
	"legal-aid-be/internal/pkg/serverutils"
	"legal-aid-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	maxNoticeFileSize = 10 * 1024 * 1024
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type INoticeController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Classify(ctx *fiber.Ctx) error
	Reclassify(ctx *fiber.Ctx) error
	Current(ctx *fiber.Ctx) error
	SubmitSelection(ctx *fiber.Ctx) error
	GenerateDraft(ctx *fiber.Ctx) error
	SaveDraft(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	ExportHistory(ctx *fiber.Ctx) error
	GetHistoryDetail(ctx *fiber.Ctx) error
	GetDocumentURL(ctx *fiber.Ctx) error
}

type noticeController struct {
	service service.INoticeService
	auth    fiber.Handler
}

func NewNoticeController(service service.INoticeService, auth fiber.Handler) INoticeController {
	return &noticeController{service: service, auth: auth}
}

func (c *noticeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notice/v1")
	h.Use(c.auth)
	h.Post("/upload", c.Upload)
	h.Post("/classify", c.Classify)
	h.Post("/reclassify", c.Reclassify)
	h.Get("/current", c.Current)
	h.Post("/selection", c.SubmitSelection)
	h.Post("/draft", c.GenerateDraft)
	h.Put("/draft", c.SaveDraft)
	h.Get("/history", c.GetHistory)
	h.Get("/history/export", c.ExportHistory)
	h.Get("/history/:id", c.GetHistoryDetail)
	h.Get("/history/:id/document-url", c.GetDocumentURL)
}

func (c *noticeController) Upload(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File is required")
	}
	if fileHeader.Size > maxNoticeFileSize {
		return fiber.ErrRequestEntityTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.service.Upload(ctx.UserContext(), userId,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
		ctx.FormValue("notice_text"),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notice uploaded", res))
}

func (c *noticeController) Classify(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Classify(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notice classified", res))
}

func (c *noticeController) Reclassify(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Reclassify(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notice reclassified", res))
}

func (c *noticeController) Current(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Current(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Current case", res))
}

func (c *noticeController) SubmitSelection(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitSelectionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SubmitSelection(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Selection saved", res))
}

func (c *noticeController) GenerateDraft(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GenerateDraft(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Draft generated", res))
}

func (c *noticeController) SaveDraft(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SaveDraftRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := c.service.SaveDraft(ctx.UserContext(), userId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Reply saved", nil))
}

func (c *noticeController) GetHistory(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetHistory(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("History", res))
}

func (c *noticeController) ExportHistory(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	data, err := c.service.ExportHistory(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, xlsxContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="history-%s.xlsx"`, time.Now().Format("20060102")))
	return ctx.Send(data)
}

func (c *noticeController) GetHistoryDetail(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	activityId, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetHistoryDetail(ctx.UserContext(), userId, activityId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("History detail", res))
}

func (c *noticeController) GetDocumentURL(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	activityId, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetDocumentURL(ctx.UserContext(), userId, activityId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document URL", res))
}
