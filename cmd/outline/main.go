package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"author-be/internal/config"
	"author-be/internal/entity"
	"author-be/internal/pkg/logger"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
	"author-be/internal/schema"
	"author-be/internal/service"
	"author-be/pkg/database"

	"github.com/fatih/color"
)

// Prints the activity tree of one repository, e.g. `go run ./cmd/outline 42`.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/outline <repository_id> [--all]")
		os.Exit(1)
	}
	repositoryId, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		log.Fatalf("Invalid repository id %q: %v", os.Args[1], err)
	}
	includeDetached := len(os.Args) > 2 && os.Args[2] == "--all"

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}
	registry, err := schema.LoadFile(cfg.Schema.Path)
	if err != nil {
		log.Fatalf("Failed to load schema config: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	tree := service.NewContentTree(registry, nil, logger.NewNopLogger(), nil)
	activities := service.NewActivityService(uowFactory, tree, nil, logger.NewNopLogger())
	elements := service.NewContentElementService(uowFactory, tree)

	repo, err := uowFactory.NewUnitOfWork(ctx).RepositoryRepository().FindOne(ctx, specification.ByID{ID: repositoryId})
	if err != nil {
		log.Fatalf("Failed to load repository: %v", err)
	}
	if repo == nil {
		color.Red("Repository %d not found", repositoryId)
		os.Exit(1)
	}

	mctx := entity.MutationContext{}
	list, err := activities.List(ctx, mctx, service.ActivityFilter{
		RepositoryId:    repositoryId,
		IncludeDetached: includeDetached,
	})
	if err != nil {
		log.Fatalf("Failed to list activities: %v", err)
	}
	elementList, err := elements.List(ctx, mctx, service.ElementFilter{
		RepositoryId:    &repositoryId,
		IncludeDetached: includeDetached,
	})
	if err != nil {
		log.Fatalf("Failed to list content elements: %v", err)
	}

	color.Cyan("📚 %s (%s)", repo.Name, repo.SchemaId)
	render(os.Stdout, list, countElements(elementList), registry)
}
