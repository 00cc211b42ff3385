package view

import "encoding/json"

const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// Chart is a Vega-Lite specification.
type Chart struct {
	Schema   string    `json:"$schema"`
	Title    string    `json:"title,omitempty"`
	Height   int       `json:"height,omitempty"`
	Width    string    `json:"width,omitempty"`
	Data     Data      `json:"data"`
	Mark     *Mark     `json:"mark"`
	Encoding *Encoding `json:"encoding"`
}

type Data struct {
	Values []map[string]interface{} `json:"values"`
}

type Mark struct {
	Type        string      `json:"type"`
	InnerRadius int         `json:"innerRadius,omitempty"`
	Line        *MarkLine   `json:"line,omitempty"`
	Color       interface{} `json:"color,omitempty"`
}

type MarkLine struct {
	Color string `json:"color"`
}

// Gradient is a linear color gradient usable as a mark color.
type Gradient struct {
	Gradient string         `json:"gradient"`
	Stops    []GradientStop `json:"stops"`
	X1       float64        `json:"x1"`
	X2       float64        `json:"x2"`
	Y1       float64        `json:"y1"`
	Y2       float64        `json:"y2"`
}

type GradientStop struct {
	Color  string  `json:"color"`
	Offset float64 `json:"offset"`
}

type Encoding struct {
	X       *Channel  `json:"x,omitempty"`
	Y       *Channel  `json:"y,omitempty"`
	Theta   *Channel  `json:"theta,omitempty"`
	Color   *Channel  `json:"color,omitempty"`
	Tooltip []Channel `json:"tooltip,omitempty"`
}

// Field types.
const (
	Nominal      = "nominal"
	Quantitative = "quantitative"
	Temporal     = "temporal"
)

type Channel struct {
	Field  string `json:"field"`
	Type   string `json:"type"`
	Title  string `json:"title,omitempty"`
	Sort   string `json:"sort,omitempty"`
	Format string `json:"format,omitempty"`
	Axis   *Axis  `json:"axis,omitempty"`
	// NoLegend hides the legend, it encodes as "legend": null.
	NoLegend bool `json:"-"`
}

type Axis struct {
	Format string `json:"format,omitempty"`
}

func newChart(title string, height int, values []map[string]interface{}, mark *Mark, enc *Encoding) *Chart {
	return &Chart{
		Schema:   vegaLiteSchema,
		Title:    title,
		Height:   height,
		Width:    "container",
		Data:     Data{Values: values},
		Mark:     mark,
		Encoding: enc,
	}
}

func (c Channel) MarshalJSON() ([]byte, error) {
	type channel Channel
	if !c.NoLegend {
		return json.Marshal(channel(c))
	}

	return json.Marshal(struct {
		channel
		Legend *struct{} `json:"legend"`
	}{channel: channel(c)})
}
