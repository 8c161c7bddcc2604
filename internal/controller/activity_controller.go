package controller

import (
	"author-be/internal/dto"
	"author-be/internal/entity"
	"author-be/internal/pkg/serverutils"
	"author-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IActivityController interface {
	RegisterRoutes(r fiber.Router)
}

type activityController struct {
	activities service.IActivityService
	library    service.ILibraryService
}

func NewActivityController(activities service.IActivityService, library service.ILibraryService) IActivityController {
	return &activityController{activities: activities, library: library}
}

func (c *activityController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/repositories/:repositoryId/activities")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Post("/link", c.Link)
	h.Get("/:id", c.Show)
	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/restore", c.Restore)
	h.Post("/:id/reorder", c.Reorder)
	h.Post("/:id/clone", c.Clone)
	h.Post("/:id/publish", c.Publish)
	h.Post("/:id/touch", c.Touch)
	h.Post("/:id/unlink", c.Unlink)
	h.Get("/:id/status", c.GetStatus)
	h.Put("/:id/status", c.UpdateStatus)
	h.Get("/:id/siblings", c.Siblings)
	h.Get("/:id/predecessors", c.Predecessors)
	h.Get("/:id/descendants", c.Descendants)
	h.Get("/:id/outline-item", c.OutlineItem)
	h.Get("/:id/source", c.Source)
	h.Get("/:id/copies", c.Copies)
}

// target resolves the caller scope and the activity id from the path.
func (c *activityController) target(ctx *fiber.Ctx) (entity.MutationContext, int64, error) {
	mctx, _, err := repositoryScope(ctx)
	if err != nil {
		return mctx, 0, err
	}
	id, err := int64Param(ctx, "id")
	return mctx, id, err
}

func (c *activityController) List(ctx *fiber.Ctx) error {
	mctx, repositoryId, err := repositoryScope(ctx)
	if err != nil {
		return err
	}
	parentId, err := optionalInt64Query(ctx, "parent_id")
	if err != nil {
		return err
	}

	res, err := c.activities.List(ctx.UserContext(), mctx, service.ActivityFilter{
		RepositoryId:    repositoryId,
		ParentId:        parentId,
		RootOnly:        ctx.QueryBool("root_only"),
		Types:           listQuery(ctx, "types"),
		IncludeDetached: ctx.QueryBool("include_detached"),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list activities", dto.NewActivityListResponse(res)))
}

func (c *activityController) Create(ctx *fiber.Ctx) error {
	mctx, repositoryId, err := repositoryScope(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateActivityRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.activities.Create(ctx.UserContext(), mctx, service.CreateActivityInput{
		RepositoryId: repositoryId,
		ParentId:     req.ParentId,
		Type:         req.Type,
		Position:     req.Position,
		Data:         req.Data,
		Refs:         req.Refs,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create activity", dto.NewActivityResponse(res)))
}

func (c *activityController) Show(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.Get(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show activity", dto.NewActivityResponse(res)))
}

func (c *activityController) Update(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateActivityRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.activities.Update(ctx.UserContext(), mctx, id, entity.ActivityChanges{
		Data:     req.Data,
		Refs:     req.Refs,
		Position: req.Position,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update activity", dto.NewActivityResponse(res)))
}

func (c *activityController) Delete(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	opts := service.RemoveOptions{
		Recursive: ctx.QueryBool("recursive", true),
		Soft:      ctx.QueryBool("soft", true),
	}
	if err := c.activities.Remove(ctx.UserContext(), mctx, id, opts); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete activity", nil))
}

func (c *activityController) Restore(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.Restore(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success restore activity", dto.NewActivityResponse(res)))
}

func (c *activityController) Reorder(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	var req dto.ReorderRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.activities.Reorder(ctx.UserContext(), mctx, id, *req.TargetIndex)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reorder activity", dto.NewActivityResponse(res)))
}

func (c *activityController) Clone(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	var req dto.CloneActivityRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if _, err := c.activities.Get(ctx.UserContext(), mctx, id); err != nil {
		return err
	}
	// The copy may land in another repository, so the clone itself runs
	// with the token scope rather than the path scope.
	tokenScope, err := serverutils.MutationContextFrom(ctx)
	if err != nil {
		return err
	}
	root, mappings, err := c.activities.Clone(ctx.UserContext(), tokenScope, id, service.CloneActivityInput{
		TargetRepositoryId: req.TargetRepositoryId,
		TargetParentId:     req.TargetParentId,
		Position:           req.Position,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success clone activity", dto.CloneActivityResponse{
		Activity: dto.NewActivityResponse(root),
		Mappings: dto.NewCloneMappingsResponse(mappings),
	}))
}

func (c *activityController) Publish(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.Publish(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success publish activity", dto.NewActivityResponse(res)))
}

func (c *activityController) Touch(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.Touch(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success touch activity", dto.NewActivityResponse(res)))
}

func (c *activityController) GetStatus(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.GetStatus(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get activity status", dto.NewActivityStatusResponse(res)))
}

func (c *activityController) UpdateStatus(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.activities.UpdateStatus(ctx.UserContext(), mctx, id, service.UpdateStatusInput{
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeId:  req.AssigneeId,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update activity status", dto.NewActivityStatusResponse(res)))
}

func (c *activityController) Siblings(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.Siblings(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get siblings", dto.NewActivityListResponse(res)))
}

func (c *activityController) Predecessors(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.Predecessors(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get predecessors", dto.NewActivityListResponse(res)))
}

func (c *activityController) Descendants(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.Descendants(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get descendants", dto.NewDescendantsResponse(res)))
}

func (c *activityController) OutlineItem(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.activities.GetFirstOutlineItem(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get outline item", dto.NewActivityResponse(res)))
}

func (c *activityController) Link(ctx *fiber.Ctx) error {
	mctx, repositoryId, err := repositoryScope(ctx)
	if err != nil {
		return err
	}
	var req dto.LinkActivityRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	root, mappings, err := c.library.LinkActivity(ctx.UserContext(), mctx, service.LinkActivityInput{
		SourceId:           req.SourceId,
		TargetRepositoryId: repositoryId,
		ParentId:           req.ParentId,
		Position:           req.Position,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success link activity", dto.CloneActivityResponse{
		Activity: dto.NewActivityResponse(root),
		Mappings: dto.NewCloneMappingsResponse(mappings),
	}))
}

func (c *activityController) Unlink(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.library.UnlinkActivity(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success unlink activity", dto.NewActivityResponse(res)))
}

func (c *activityController) Source(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.library.GetSource(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get source", dto.NewActivityResponse(res)))
}

func (c *activityController) Copies(ctx *fiber.Ctx) error {
	mctx, id, err := c.target(ctx)
	if err != nil {
		return err
	}
	res, err := c.library.GetCopies(ctx.UserContext(), mctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get copies", dto.NewActivityListResponse(res)))
}
