// Package catalog holds the Capability Descriptor: the static, process-wide
// table of exposed tools and resources. It is built once at startup and
// never mutated, so every session shares it without copying or locking.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	hcErrors "github.com/fitstack/healthcalc/pkg/errors"
)

// ToolNameHealthCalculator is the single tool exposed by this server.
const ToolNameHealthCalculator = "bmi-health-calculator"

// WidgetURI is the resource URI of the embedded calculator widget.
const WidgetURI = "ui://widget/health-calc.html"

//go:embed widget.html
var widgetHTML string

// Tool describes one invokable operation: its schemas plus the static
// presentation metadata the client uses to render results.
type Tool struct {
	Name         string             `json:"name"`
	Title        string             `json:"title,omitempty"`
	Description  string             `json:"description,omitempty"`
	InputSchema  *jsonschema.Schema `json:"inputSchema"`
	OutputSchema *jsonschema.Schema `json:"outputSchema,omitempty"`
	Meta         map[string]any     `json:"_meta,omitempty"`

	resolved *jsonschema.Resolved
}

// ValidateArguments checks args against the tool's declared input schema.
func (t *Tool) ValidateArguments(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	return t.resolved.Validate(args)
}

// Resource describes one readable static resource.
type Resource struct {
	URI      string         `json:"uri"`
	Name     string         `json:"name"`
	MimeType string         `json:"mimeType"`
	Meta     map[string]any `json:"_meta,omitempty"`

	text string
}

// ResourceContents is the wire shape of one resources/read content item.
type ResourceContents struct {
	URI      string         `json:"uri"`
	MimeType string         `json:"mimeType"`
	Text     string         `json:"text"`
	Meta     map[string]any `json:"_meta,omitempty"`
}

// Catalog is the immutable descriptor set shared by all sessions.
type Catalog struct {
	tools     map[string]*Tool
	toolOrder []string
	resources []*Resource
}

// New builds the static catalog. Schema resolution failures are programmer
// errors in the descriptor literals, so they surface at startup, not per
// request.
func New() (*Catalog, error) {
	c := &Catalog{tools: make(map[string]*Tool)}

	healthTool := &Tool{
		Name:         ToolNameHealthCalculator,
		Title:        "Health Calculator",
		Description:  "Computes BMI with category, ideal weight range, and optionally body fat percentage and daily calorie needs from body measurements.",
		InputSchema:  healthInputSchema(),
		OutputSchema: healthOutputSchema(),
		Meta: map[string]any{
			"openai/outputTemplate":          WidgetURI,
			"openai/toolInvocation/invoking": "Calculating health metrics",
			"openai/toolInvocation/invoked":  "Health metrics ready",
		},
	}
	if err := c.addTool(healthTool); err != nil {
		return nil, err
	}

	c.resources = append(c.resources, &Resource{
		URI:      WidgetURI,
		Name:     "health-calc-widget",
		MimeType: "text/html+skybridge",
		Meta: map[string]any{
			"openai/widgetDescription":   "Interactive health metrics calculator",
			"openai/widgetPrefersBorder": true,
		},
		text: widgetHTML,
	})

	return c, nil
}

func (c *Catalog) addTool(t *Tool) error {
	resolved, err := t.InputSchema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("failed to resolve input schema for tool %s: %w", t.Name, err)
	}
	t.resolved = resolved
	c.tools[t.Name] = t
	c.toolOrder = append(c.toolOrder, t.Name)
	return nil
}

// Tools returns all tool descriptors in registration order.
func (c *Catalog) Tools() []*Tool {
	tools := make([]*Tool, 0, len(c.toolOrder))
	for _, name := range c.toolOrder {
		tools = append(tools, c.tools[name])
	}
	return tools
}

// Tool resolves a tool name, failing with ErrUnknownTool if absent.
func (c *Catalog) Tool(name string) (*Tool, error) {
	t, ok := c.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", hcErrors.ErrUnknownTool, name)
	}
	return t, nil
}

// Resources returns all resource descriptors.
func (c *Catalog) Resources() []*Resource {
	return c.resources
}

// ReadResource returns the contents of the resource at uri, failing with
// ErrUnknownResource if no resource is registered under it.
func (c *Catalog) ReadResource(uri string) (*ResourceContents, error) {
	for _, r := range c.resources {
		if r.URI == uri {
			return &ResourceContents{
				URI:      r.URI,
				MimeType: r.MimeType,
				Text:     r.text,
				Meta:     r.Meta,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", hcErrors.ErrUnknownResource, uri)
}

func healthInputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"height_cm": {
				Type:        "number",
				Description: "Height in centimeters",
				Minimum:     f64(50),
				Maximum:     f64(280),
			},
			"weight_kg": {
				Type:        "number",
				Description: "Weight in kilograms",
				Minimum:     f64(10),
				Maximum:     f64(500),
			},
			"age": {
				Type:        "integer",
				Description: "Age in years",
				Minimum:     f64(1),
				Maximum:     f64(130),
			},
			"sex": {
				Type:        "string",
				Description: "Sex category used by the body fat and calorie formulas",
				Enum:        []any{"male", "female"},
			},
			"waist_cm": {
				Type:        "number",
				Description: "Waist circumference in centimeters",
				Minimum:     f64(1),
			},
			"hip_cm": {
				Type:        "number",
				Description: "Hip circumference in centimeters, required for the female body fat formula",
				Minimum:     f64(1),
			},
			"neck_cm": {
				Type:        "number",
				Description: "Neck circumference in centimeters",
				Minimum:     f64(1),
			},
			"activity_level": {
				Type:        "string",
				Description: "Activity tier for daily calorie estimation",
				Enum:        []any{"sedentary", "light", "moderate", "active", "very_active"},
			},
		},
		Required:             []string{"height_cm", "weight_kg"},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

func healthOutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"bmi":          {Type: "number"},
			"bmi_category": {Type: "string"},
			"ideal_weight": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"min_kg": {Type: "number"},
					"max_kg": {Type: "number"},
				},
			},
			"body_fat_percent": {Types: []string{"number", "null"}},
			"daily_calories":   {Types: []string{"number", "null"}},
		},
		Required: []string{"bmi", "bmi_category"},
	}
}

func f64(v float64) *float64 { return &v }
