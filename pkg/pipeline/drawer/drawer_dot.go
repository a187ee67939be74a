package drawer

import (
	"fmt"
	"io"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/featbench/pkg/pipeline/measure"
	"github.com/askiada/featbench/pkg/pipeline/model"
)

// DOTDrawer is a drawer that creates a Graphviz DOT file with the stage graph.
type DOTDrawer struct {
	fs       afero.Fs
	graph    graph.Graph[string, string]
	stages   map[string]struct{}
	fileName string
}

// NewDOTDrawer creates a new DOT drawer writing fileName on fs.
func NewDOTDrawer(fs afero.Fs, fileName string) *DOTDrawer {
	return &DOTDrawer{
		fs:       fs,
		fileName: fileName,
		graph:    graph.New(graph.StringHash, graph.Directed()),
		stages:   make(map[string]struct{}),
	}
}

// AddStage adds a stage to the pipeline graph.
func (d *DOTDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.stages[name] = struct{}{}

	return nil
}

// AddLink adds a link between parent and children stages.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

var statusStyles = map[model.StageStatus]string{
	model.StatusRan:      "filled",
	model.StatusSkipped:  "filled,dotted",
	model.StatusDisabled: "dashed",
	model.StatusFailed:   "filled,bold",
	model.StatusError:    "bold",
}

// SetStatus styles a stage according to its outcome.
func (d *DOTDrawer) SetStatus(stageName string, status model.StageStatus) error {
	_, properties, err := d.graph.VertexWithProperties(stageName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stageName)
	}

	if style, ok := statusStyles[status]; ok {
		properties.Attributes["style"] = style
	}
	properties.Attributes["tooltip"] = string(status)
	if status == model.StatusFailed || status == model.StatusError {
		properties.Attributes["color"] = "red"
	}

	return nil
}

// SetTotalTime sets the total time for the stage.
func (d *DOTDrawer) SetTotalTime(stageName string, totalTime time.Duration) error {
	_, properties, err := d.graph.VertexWithProperties(stageName)
	if err != nil {
		return errors.Wrap(err, "unable to get end vertex properties")
	}

	properties.Attributes["xlabel"] = totalTime.String()

	return nil
}

// Leaves returns the stages without children, start and end excluded.
func (d *DOTDrawer) Leaves() ([]string, error) {
	adjacencyMap, err := d.graph.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get adjacency map")
	}

	leaves := []string{}
	for vertex, adjacencies := range adjacencyMap {
		if vertex == model.StartStage.Name || vertex == model.EndStage.Name {
			continue
		}
		if len(adjacencies) == 0 {
			leaves = append(leaves, vertex)
		}
	}
	sort.Strings(leaves)

	return leaves, nil
}

const maxRGB = 240

// AddMeasure colours every stage that ran from blue (fastest) to red (slowest)
// and labels it with its duration.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	var minValue, maxValue time.Duration
	first := true
	for _, name := range msr.Names() {
		elapsed := msr.GetMetric(name).GetDuration()
		if elapsed == 0 {
			continue
		}
		if first || elapsed < minValue {
			minValue = elapsed
		}
		if first || elapsed > maxValue {
			maxValue = elapsed
		}
		first = false
	}

	for _, name := range msr.Names() {
		mt := msr.GetMetric(name)
		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		elapsed := mt.GetDuration()
		if elapsed == 0 {
			continue
		}
		properties.Attributes["xlabel"] = elapsed.String()

		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(elapsed-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := maxRGB - red

		colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		properties.Attributes["fillcolor"] = colour.ToHEX().String()
		properties.Attributes["fontcolor"] = "white"
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *DOTDrawer) Draw() (err error) {
	file, err := d.fs.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "unable to close %s", d.fileName)
		}
	}()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.fileName)
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(g graph.Graph[string, string], wrt io.Writer) error {
	desc, err := generateDOT(g)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

func generateDOT(gra graph.Graph[string, string]) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   map[string]string{"rankdir": "LR"},
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	// sorted so the output is stable across runs
	vertices := make([]string, 0, len(adjacencyMap))
	for vertex := range adjacencyMap {
		vertices = append(vertices, vertex)
	}
	sort.Strings(vertices)

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))
		for k, v := range sourceProperties.Attributes {
			sourceAttributes[k] = v
		}

		if xlabel, ok := sourceAttributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceAttributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		})

		targets := make([]string, 0, len(adjacencyMap[vertex]))
		for target := range adjacencyMap[vertex] {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		for _, target := range targets {
			edge := adjacencyMap[vertex][target]
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         target,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
