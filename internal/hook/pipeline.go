// Package hook runs ordered lifecycle handlers around activity and content
// element mutations.
package hook

import (
	"context"
	"fmt"

	"author-be/internal/entity"
	"author-be/internal/repository/unitofwork"
)

type Stage string

const (
	BeforeCreate    Stage = "beforeCreate"
	AfterCreate     Stage = "afterCreate"
	BeforeUpdate    Stage = "beforeUpdate"
	AfterUpdate     Stage = "afterUpdate"
	BeforeDestroy   Stage = "beforeDestroy"
	AfterDestroy    Stage = "afterDestroy"
	AfterRestore    Stage = "afterRestore"
	AfterBulkUpdate Stage = "afterBulkUpdate"
)

// Options is what every handler of a stage receives next to the entity.
type Options[T any] struct {
	Context entity.MutationContext
	UoW     unitofwork.UnitOfWork
	// Changed lists the columns that were part of the write.
	Changed []string
	// Previous is the row as it was before an update, zero otherwise.
	Previous T
}

func (o Options[T]) HasChanged(field string) bool {
	for _, f := range o.Changed {
		if f == field {
			return true
		}
	}
	return false
}

type HandlerFunc[T any] func(ctx context.Context, stage Stage, item T, opts Options[T]) error

type Handler[T any] struct {
	Name string
	Fn   HandlerFunc[T]
}

// Pipeline holds a fixed handler list per stage. The order of a list is part
// of its contract.
type Pipeline[T any] struct {
	stages map[Stage][]Handler[T]
}

func NewPipeline[T any]() *Pipeline[T] {
	return &Pipeline[T]{stages: make(map[Stage][]Handler[T])}
}

// On sets the handler list of a stage, replacing any previous list.
func (p *Pipeline[T]) On(stage Stage, handlers ...Handler[T]) *Pipeline[T] {
	p.stages[stage] = append([]Handler[T](nil), handlers...)
	return p
}

// Run executes the handlers of stage in order and stops at the first error.
func (p *Pipeline[T]) Run(ctx context.Context, stage Stage, item T, opts Options[T]) error {
	for _, h := range p.stages[stage] {
		if err := h.Fn(ctx, stage, item, opts); err != nil {
			return fmt.Errorf("%s %s: %w", stage, h.Name, err)
		}
	}
	return nil
}

func (p *Pipeline[T]) Names(stage Stage) []string {
	handlers := p.stages[stage]
	names := make([]string, len(handlers))
	for i, h := range handlers {
		names[i] = h.Name
	}
	return names
}

// Named builds a handler from a method value or closure.
func Named[T any](name string, fn func(ctx context.Context, stage Stage, item T, opts Options[T]) error) Handler[T] {
	return Handler[T]{Name: name, Fn: fn}
}
