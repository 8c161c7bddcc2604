package controller

import (
	"author-be/internal/dto"
	"author-be/internal/entity"
	"author-be/internal/pkg/serverutils"
	"author-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContentElementController interface {
	RegisterRoutes(r fiber.Router)
}

type contentElementController struct {
	elements service.IContentElementService
}

func NewContentElementController(elements service.IContentElementService) IContentElementController {
	return &contentElementController{elements: elements}
}

func (c *contentElementController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/repositories/:repositoryId/content-elements")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Post("/link", c.Link)
	h.Post("/clone", c.Clone)
	h.Get("/:id", c.Show)
	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/reorder", c.Reorder)
	h.Post("/:id/unlink", c.Unlink)
	h.Get("/:id/source", c.Source)
	h.Get("/:id/copies", c.Copies)
}

func (c *contentElementController) target(ctx *fiber.Ctx) (entity.MutationContext, int64, error) {
	mctx, _, err := repositoryScope(ctx)
	if err != nil {
		return mctx, 0, err
	}
	id, err := int64Param(ctx, "id")
	return mctx, id, err
}

func (c *contentElementController) List(ctx *fiber.Ctx) error {
	mctx, repositoryId, err := repositoryScope(ctx)
	if err != nil {
		return err
	}
	activityId, err := optionalInt64Query(ctx, "activity_id")
	if err != nil {
		return err
	}

	filter := service.ElementFilter{
		ActivityId:      activityId,
		Types:           listQuery(ctx, "types"),
		IncludeDetached: ctx.QueryBool("include_detached"),
	}
	if activityId == nil {
		filter.RepositoryId = &repositoryId
	}

	res, err := c.elements.List(ctx.UserContext(), mctx, filter)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list content elements", dto.NewContentElementListResponse(res)))
}

func (c *contentElementController) Create(ctx *fiber.Ctx) error {
	mctx, _, err := repositoryScope(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateContentElementRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.elements.Create(ctx.UserContext(), mctx, service.CreateElementInput{
		ActivityId: req.ActivityId,
		Type:       req.Type,
		Position:   req.Position,
		Data:       req.Data,
		Meta:       req.Meta,
		Refs:       req.Refs,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create content element", dto.NewContentElementResponse(res)))
}

func (c *contentElementController) Show(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.elements.Get(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show content element", dto.NewContentElementResponse(res)))
}

func (c *contentElementController) Update(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateContentElementRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.elements.Update(ctx.UserContext(), mctx, id, entity.ContentElementChanges{
		Data:     req.Data,
		Meta:     req.Meta,
		Refs:     req.Refs,
		Position: req.Position,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update content element", dto.NewContentElementResponse(res)))
}

func (c *contentElementController) Delete(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	if err := c.elements.Remove(ctx.UserContext(), mctx, id, ctx.QueryBool("soft", true)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete content element", nil))
}

func (c *contentElementController) Reorder(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	var req dto.ReorderRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.elements.Reorder(ctx.UserContext(), mctx, id, *req.TargetIndex)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reorder content element", dto.NewContentElementResponse(res)))
}

func (c *contentElementController) Link(ctx *fiber.Ctx) error {
	mctx, _, err := repositoryScope(ctx)
	if err != nil {
		return err
	}
	var req dto.LinkContentElementRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.elements.Link(ctx.UserContext(), mctx, service.LinkElementInput{
		SourceElementId:  req.SourceElementId,
		TargetActivityId: req.TargetActivityId,
		Position:         req.Position,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success link content element", dto.NewContentElementResponse(res)))
}

func (c *contentElementController) Clone(ctx *fiber.Ctx) error {
	mctx, _, err := repositoryScope(ctx)
	if err != nil {
		return err
	}
	var req dto.CloneContentElementsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	copies, mappings, err := c.elements.CloneElements(ctx.UserContext(), mctx, req.ElementIds, req.TargetActivityId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success clone content elements", dto.CloneContentElementsResponse{
		Elements: dto.NewContentElementListResponse(copies),
		Mappings: dto.NewCloneMappingsResponse(mappings),
	}))
}

func (c *contentElementController) Unlink(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.elements.Unlink(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success unlink content element", dto.NewContentElementResponse(res)))
}

func (c *contentElementController) Source(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.elements.GetSource(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get source", dto.NewContentElementResponse(res)))
}

func (c *contentElementController) Copies(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.elements.GetCopies(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get copies", dto.NewContentElementListResponse(res)))
}
