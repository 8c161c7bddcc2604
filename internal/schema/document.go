package schema

// Document is the on-disk layout of the schema configuration file.
type Document struct {
	Schemas            []Schema   `yaml:"schemas"`
	Workflows          []Workflow `yaml:"workflows"`
	GradedElementTypes []string   `yaml:"gradedElementTypes"`
}

type Schema struct {
	Id                string             `yaml:"id"`
	Workflow          string             `yaml:"workflow"`
	Structure         []Level            `yaml:"structure"`
	ContentContainers []ContentContainer `yaml:"contentContainers"`
	// LinkMappings is keyed by destination parent type (RootParent for the
	// top level) and maps a source type to the type it becomes here.
	LinkMappings map[string]map[string]string `yaml:"linkMappings"`
}

// Level is an outline level of a schema.
type Level struct {
	Type                string   `yaml:"type"`
	RootLevel           bool     `yaml:"rootLevel"`
	SubLevels           []string `yaml:"subLevels"`
	ContentContainers   []string `yaml:"contentContainers"`
	IsTrackedInWorkflow bool     `yaml:"isTrackedInWorkflow"`
}

type ContentContainer struct {
	Type            string `yaml:"type"`
	AssessmentGroup bool   `yaml:"assessmentGroup"`
}

type Workflow struct {
	Id              string   `yaml:"id"`
	Statuses        []Status `yaml:"statuses"`
	DefaultPriority int      `yaml:"defaultPriority"`
}

type Status struct {
	Id      string `yaml:"id"`
	Default bool   `yaml:"default"`
}

// RootParent is the link mapping key used for activities without a parent.
const RootParent = "ROOT"
