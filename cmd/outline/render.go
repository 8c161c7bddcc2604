package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"author-be/internal/entity"
	"author-be/internal/schema"

	"github.com/fatih/color"
)

var (
	outlineColor = color.New(color.FgCyan, color.Bold)
	trackedColor = color.New(color.FgYellow)
	linkedColor  = color.New(color.FgGreen)
	faintColor   = color.New(color.Faint)
)

func countElements(elements []*entity.ContentElement) map[int64]int {
	counts := make(map[int64]int)
	for _, e := range elements {
		counts[e.ActivityId]++
	}
	return counts
}

// render writes the activities as an indented tree ordered by position.
// Activities whose parent is missing from the list are treated as roots.
func render(w io.Writer, activities []*entity.Activity, elementCounts map[int64]int, provider schema.Provider) {
	present := make(map[int64]bool, len(activities))
	for _, a := range activities {
		present[a.Id] = true
	}

	children := make(map[int64][]*entity.Activity)
	var roots []*entity.Activity
	for _, a := range activities {
		if a.ParentId == nil || !present[*a.ParentId] {
			roots = append(roots, a)
			continue
		}
		children[*a.ParentId] = append(children[*a.ParentId], a)
	}

	var walk func(nodes []*entity.Activity, prefix string)
	walk = func(nodes []*entity.Activity, prefix string) {
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Position < nodes[j].Position })
		for i, a := range nodes {
			last := i == len(nodes)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			fmt.Fprint(w, prefix+branch)
			writeLabel(w, a, elementCounts[a.Id], provider)
			fmt.Fprintln(w)
			walk(children[a.Id], prefix+next)
		}
	}
	walk(roots, "")
}

func writeLabel(w io.Writer, a *entity.Activity, elements int, provider schema.Provider) {
	label := fmt.Sprintf("%s #%d", a.Type, a.Id)
	switch {
	case provider != nil && provider.IsOutlineActivity(a.Type):
		outlineColor.Fprint(w, label)
	case provider != nil && provider.IsTrackedInWorkflow(a.Type):
		trackedColor.Fprint(w, label)
	default:
		fmt.Fprint(w, label)
	}

	if name, ok := a.Data["name"].(string); ok && strings.TrimSpace(name) != "" {
		fmt.Fprintf(w, " %q", name)
	}
	if elements > 0 {
		faintColor.Fprintf(w, " (%d elements)", elements)
	}
	if a.IsLinkedCopy {
		linkedColor.Fprint(w, " [linked]")
	}
	if a.Detached {
		faintColor.Fprint(w, " [detached]")
	}
}
