package svg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Point is a position in drawing coordinates. In the input document points
// arrive as a two-element [x, y] array.
type Point struct {
	X float64
	Y float64
}

// UnmarshalJSON decodes the [x, y] array form.
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) != 2 {
		return fmt.Errorf("point needs 2 coordinates, got %d", len(coords))
	}
	p.X, p.Y = coords[0], coords[1]
	return nil
}

// ColorKind tags the colour sum type.
type ColorKind int

const (
	ColorNone ColorKind = iota
	ColorNamed
	ColorRGB
	ColorRGBA
)

// Color is the four-variant colour sum: none, a named string, rgb or rgba.
type Color struct {
	Kind  ColorKind
	Name  string
	Red   uint8
	Green uint8
	Blue  uint8
	Alpha float64
}

// NoneColor is the absent colour; it renders as "none".
var NoneColor = Color{}

// Named wraps a colour keyword or any pre-rendered colour string.
func Named(name string) Color {
	return Color{Kind: ColorNamed, Name: name}
}

// RGB builds an opaque channel colour.
func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, Red: r, Green: g, Blue: b}
}

// RGBA builds a channel colour with an alpha component.
func RGBA(r, g, b uint8, a float64) Color {
	return Color{Kind: ColorRGBA, Red: r, Green: g, Blue: b, Alpha: a}
}

// String renders the exact textual form of each variant.
func (c Color) String() string {
	switch c.Kind {
	case ColorNamed:
		return c.Name
	case ColorRGB:
		return fmt.Sprintf("rgb(%d,%d,%d)", c.Red, c.Green, c.Blue)
	case ColorRGBA:
		return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.Red, c.Green, c.Blue, formatFloat(c.Alpha))
	default:
		return "none"
	}
}

// UnmarshalJSON decodes the two input forms: a string, or an [r, g, b]
// array with an optional fourth alpha element.
func (c *Color) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = Named(name)
		return nil
	}
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	switch len(parts) {
	case 3:
		*c = RGB(uint8(parts[0]), uint8(parts[1]), uint8(parts[2]))
	case 4:
		*c = RGBA(uint8(parts[0]), uint8(parts[1]), uint8(parts[2]), parts[3])
	default:
		return fmt.Errorf("colour needs 3 or 4 components, got %d", len(parts))
	}
	return nil
}

// Attrs are the paint attributes shared by every primitive. A zero
// StrokeWidth renders as the default width 1.
type Attrs struct {
	Fill           Color
	Stroke         Color
	StrokeWidth    float64
	StrokeLineCap  string
	StrokeLineJoin string
}

func (a Attrs) render(b *strings.Builder) {
	b.WriteString(`fill="`)
	b.WriteString(a.Fill.String())
	b.WriteString(`" stroke="`)
	b.WriteString(a.Stroke.String())
	b.WriteString(`" stroke-width="`)
	width := a.StrokeWidth
	if width == 0 {
		width = 1
	}
	b.WriteString(formatFloat(width))
	b.WriteString(`" `)
	if a.StrokeLineCap != "" {
		b.WriteString(`stroke-linecap="`)
		b.WriteString(a.StrokeLineCap)
		b.WriteString(`" `)
	}
	if a.StrokeLineJoin != "" {
		b.WriteString(`stroke-linejoin="`)
		b.WriteString(a.StrokeLineJoin)
		b.WriteString(`" `)
	}
}

// Object is one drawable primitive.
type Object interface {
	Render(b *strings.Builder)
}

// Circle primitive.
type Circle struct {
	Attrs
	Center Point
	Radius float64
}

func (c Circle) Render(b *strings.Builder) {
	b.WriteString(`<circle cx="`)
	b.WriteString(formatFloat(c.Center.X))
	b.WriteString(`" cy="`)
	b.WriteString(formatFloat(c.Center.Y))
	b.WriteString(`" r="`)
	b.WriteString(formatFloat(c.Radius))
	b.WriteString(`" `)
	c.Attrs.render(b)
	b.WriteString("/>")
}

// Polyline primitive.
type Polyline struct {
	Attrs
	Points []Point
}

// AddPoint appends a vertex.
func (p *Polyline) AddPoint(pt Point) {
	p.Points = append(p.Points, pt)
}

func (p Polyline) Render(b *strings.Builder) {
	b.WriteString(`<polyline points="`)
	for i, pt := range p.Points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatFloat(pt.X))
		b.WriteByte(',')
		b.WriteString(formatFloat(pt.Y))
	}
	b.WriteString(`" `)
	p.Attrs.render(b)
	b.WriteString("/>")
}

// Text primitive.
type Text struct {
	Attrs
	Point      Point
	Offset     Point
	FontSize   int32
	FontFamily string
	FontWeight string
	Data       string
}

func (t Text) Render(b *strings.Builder) {
	b.WriteString(`<text x="`)
	b.WriteString(formatFloat(t.Point.X))
	b.WriteString(`" y="`)
	b.WriteString(formatFloat(t.Point.Y))
	b.WriteString(`" dx="`)
	b.WriteString(formatFloat(t.Offset.X))
	b.WriteString(`" dy="`)
	b.WriteString(formatFloat(t.Offset.Y))
	b.WriteString(`" font-size="`)
	b.WriteString(strconv.FormatInt(int64(t.FontSize), 10))
	b.WriteString(`" `)
	if t.FontFamily != "" {
		b.WriteString(`font-family="`)
		b.WriteString(t.FontFamily)
		b.WriteString(`" `)
	}
	if t.FontWeight != "" {
		b.WriteString(`font-weight="`)
		b.WriteString(t.FontWeight)
		b.WriteString(`" `)
	}
	t.Attrs.render(b)
	b.WriteString(">")
	b.WriteString(t.Data)
	b.WriteString("</text>")
}

// Rect primitive.
type Rect struct {
	Attrs
	Origin Point
	Width  float64
	Height float64
}

func (r Rect) Render(b *strings.Builder) {
	b.WriteString(`<rect x="`)
	b.WriteString(formatFloat(r.Origin.X))
	b.WriteString(`" y="`)
	b.WriteString(formatFloat(r.Origin.Y))
	b.WriteString(`" width="`)
	b.WriteString(formatFloat(r.Width))
	b.WriteString(`" height="`)
	b.WriteString(formatFloat(r.Height))
	b.WriteString(`" `)
	r.Attrs.render(b)
	b.WriteString("/>")
}

const (
	header = `<?xml version="1.0" encoding="UTF-8" ?><svg xmlns="http://www.w3.org/2000/svg" version="1.1">`
	footer = `</svg>`
)

// Document is an ordered sequence of primitives.
type Document struct {
	objects []Object
}

// Add appends a primitive; render order is insertion order.
func (d *Document) Add(o Object) {
	d.objects = append(d.objects, o)
}

// Render emits the fixed header, each primitive in order, and the footer.
func (d *Document) Render() string {
	var b strings.Builder
	b.WriteString(header)
	for _, o := range d.objects {
		o.Render(&b)
	}
	b.WriteString(footer)
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
