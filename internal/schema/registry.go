// Package schema answers structural questions about activity and element
// types from the schema configuration file.
package schema

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Provider is the read side consumed by the services.
type Provider interface {
	HasSchema(schemaId string) bool
	IsOutlineActivity(activityType string) bool
	GetSiblingTypes(activityType string) []string
	IsTypeAllowedAtLevel(schemaId, parentType, activityType string) bool
	GetCompatibleTargetType(schemaId, parentType, sourceType string) (string, bool)
	IsTrackedInWorkflow(activityType string) bool
	GetDefaultActivityStatus(activityType string) (DefaultStatus, bool)
	IsAssessmentGroup(activityType string) bool
	IsGradedElement(elementType string) bool
	GradedElementTypes() []string
}

type DefaultStatus struct {
	Status   string
	Priority int
}

type levelRef struct {
	schema *Schema
	level  *Level
}

type containerRef struct {
	schema    *Schema
	container *ContentContainer
}

type Registry struct {
	schemas    map[string]*Schema
	workflows  map[string]*Workflow
	levels     map[string]levelRef
	containers map[string]containerRef
	graded     map[string]bool
}

func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema config: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Registry, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema config: %w", err)
	}
	return NewRegistry(doc)
}

// NewRegistry indexes doc. Types must be unique across all schemas.
func NewRegistry(doc Document) (*Registry, error) {
	r := &Registry{
		schemas:    make(map[string]*Schema),
		workflows:  make(map[string]*Workflow),
		levels:     make(map[string]levelRef),
		containers: make(map[string]containerRef),
		graded:     make(map[string]bool),
	}

	for i := range doc.Workflows {
		wf := &doc.Workflows[i]
		r.workflows[wf.Id] = wf
	}

	for i := range doc.Schemas {
		s := &doc.Schemas[i]
		if _, dup := r.schemas[s.Id]; dup {
			return nil, fmt.Errorf("duplicate schema %q", s.Id)
		}
		if s.Workflow != "" {
			if _, ok := r.workflows[s.Workflow]; !ok {
				return nil, fmt.Errorf("schema %q: unknown workflow %q", s.Id, s.Workflow)
			}
		}
		r.schemas[s.Id] = s

		for j := range s.Structure {
			l := &s.Structure[j]
			if r.isKnown(l.Type) {
				return nil, fmt.Errorf("schema %q: type %q already declared", s.Id, l.Type)
			}
			r.levels[l.Type] = levelRef{schema: s, level: l}
		}
		for j := range s.ContentContainers {
			c := &s.ContentContainers[j]
			if r.isKnown(c.Type) {
				return nil, fmt.Errorf("schema %q: type %q already declared", s.Id, c.Type)
			}
			r.containers[c.Type] = containerRef{schema: s, container: c}
		}
	}

	for _, t := range doc.GradedElementTypes {
		r.graded[t] = true
	}
	return r, nil
}

func (r *Registry) isKnown(t string) bool {
	_, isLevel := r.levels[t]
	_, isContainer := r.containers[t]
	return isLevel || isContainer
}

func (r *Registry) HasSchema(schemaId string) bool {
	_, ok := r.schemas[schemaId]
	return ok
}

func (r *Registry) IsOutlineActivity(activityType string) bool {
	_, ok := r.levels[activityType]
	return ok
}

// GetSiblingTypes returns the types that share one ordering space with
// activityType. Containers only order among themselves.
func (r *Registry) GetSiblingTypes(activityType string) []string {
	if _, ok := r.containers[activityType]; ok {
		return []string{activityType}
	}
	ref, ok := r.levels[activityType]
	if !ok {
		return []string{activityType}
	}

	seen := make(map[string]bool)
	var types []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}

	if ref.level.RootLevel {
		for _, l := range ref.schema.Structure {
			if l.RootLevel {
				add(l.Type)
			}
		}
	}
	for _, l := range ref.schema.Structure {
		if contains(l.SubLevels, activityType) {
			for _, t := range l.SubLevels {
				add(t)
			}
		}
	}
	if len(types) == 0 {
		add(activityType)
	}
	return types
}

// IsTypeAllowedAtLevel reports whether activityType may be created under a
// parent of parentType in schemaId. An empty parentType means the top level.
func (r *Registry) IsTypeAllowedAtLevel(schemaId, parentType, activityType string) bool {
	s, ok := r.schemas[schemaId]
	if !ok {
		return false
	}
	for _, l := range s.Structure {
		if parentType == "" {
			if l.RootLevel && l.Type == activityType {
				return true
			}
			continue
		}
		if l.Type == parentType {
			return contains(l.SubLevels, activityType) || contains(l.ContentContainers, activityType)
		}
	}
	return false
}

func (r *Registry) GetCompatibleTargetType(schemaId, parentType, sourceType string) (string, bool) {
	s, ok := r.schemas[schemaId]
	if !ok {
		return "", false
	}
	key := parentType
	if key == "" {
		key = RootParent
	}
	target, ok := s.LinkMappings[key][sourceType]
	if !ok || !r.IsTypeAllowedAtLevel(schemaId, parentType, target) {
		return "", false
	}
	return target, true
}

func (r *Registry) IsTrackedInWorkflow(activityType string) bool {
	ref, ok := r.levels[activityType]
	return ok && ref.level.IsTrackedInWorkflow
}

func (r *Registry) GetDefaultActivityStatus(activityType string) (DefaultStatus, bool) {
	ref, ok := r.levels[activityType]
	if !ok {
		return DefaultStatus{}, false
	}
	wf, ok := r.workflows[ref.schema.Workflow]
	if !ok || len(wf.Statuses) == 0 {
		return DefaultStatus{}, false
	}
	status := wf.Statuses[0].Id
	for _, st := range wf.Statuses {
		if st.Default {
			status = st.Id
			break
		}
	}
	return DefaultStatus{Status: status, Priority: wf.DefaultPriority}, true
}

func (r *Registry) IsAssessmentGroup(activityType string) bool {
	ref, ok := r.containers[activityType]
	return ok && ref.container.AssessmentGroup
}

func (r *Registry) IsGradedElement(elementType string) bool {
	return r.graded[elementType]
}

// GradedElementTypes lists the graded types, used to split assessment
// groups into two ordering spaces.
func (r *Registry) GradedElementTypes() []string {
	types := make([]string, 0, len(r.graded))
	for t := range r.graded {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
