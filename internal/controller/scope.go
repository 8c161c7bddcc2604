package controller

import (
	"strconv"
	"strings"

	"author-be/internal/entity"
	"author-be/internal/pkg/apperror"
	"author-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// repositoryScope narrows the caller to the repository named in the path.
// A token already bound to another repository is refused.
func repositoryScope(ctx *fiber.Ctx) (entity.MutationContext, int64, error) {
	mctx, err := serverutils.MutationContextFrom(ctx)
	if err != nil {
		return mctx, 0, err
	}
	repositoryId, err := int64Param(ctx, "repositoryId")
	if err != nil {
		return mctx, 0, err
	}
	if mctx.RepositoryId != nil && *mctx.RepositoryId != repositoryId {
		return mctx, 0, apperror.Forbidden("REPOSITORY_MISMATCH", "token is bound to another repository")
	}
	mctx.RepositoryId = &repositoryId
	return mctx, repositoryId, nil
}

func int64Param(ctx *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil {
		return 0, apperror.Validation("invalid path parameter", map[string]interface{}{name: "int64"})
	}
	return id, nil
}

func optionalInt64Query(ctx *fiber.Ctx, name string) (*int64, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperror.Validation("invalid query parameter", map[string]interface{}{name: "int64"})
	}
	return &id, nil
}

func listQuery(ctx *fiber.Ctx, name string) []string {
	raw := ctx.Query(name)
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation("malformed request body", map[string]interface{}{"body": err.Error()})
	}
	return serverutils.ValidateRequest(req)
}
