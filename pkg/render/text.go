package render

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/mesh"
)

// mtextLineSpacing is the baseline-to-baseline distance of MText lines as a
// multiple of text height, before the entity's spacing factor.
const mtextLineSpacing = 5.0 / 3.0

var hAlignNames = map[entity.HAlign]string{
	entity.HAlignLeft:    "Left",
	entity.HAlignCenter:  "Center",
	entity.HAlignRight:   "Right",
	entity.HAlignAligned: "Aligned",
	entity.HAlignMiddle:  "Middle",
	entity.HAlignFit:     "Fit",
}

var vAlignNames = map[entity.VAlign]string{
	entity.VAlignBaseline: "Baseline",
	entity.VAlignBottom:   "Bottom",
	entity.VAlignMiddle:   "Middle",
	entity.VAlignTop:      "Top",
}

// textBox is the estimated extent of a text entity in its own plane.
type textBox struct {
	anchor   geom.Vec3
	normal   geom.Vec3
	rotation float64
	width    float64
	height   float64
	// offset of the box's lower-left corner from the anchor, in text axes
	dx, dy float64
}

// corners returns the box corners in world coordinates, lower-left first,
// counter-clockwise.
func (b textBox) corners() []geom.Vec3 {
	m := geom.Compose(b.anchor, geom.PlaneRotation(b.normal, b.rotation), geom.Vec3{1, 1, 1})
	local := []geom.Vec3{
		{b.dx, b.dy, 0},
		{b.dx + b.width, b.dy, 0},
		{b.dx + b.width, b.dy + b.height, 0},
		{b.dx, b.dy + b.height, 0},
	}
	return lo.Map(local, func(p geom.Vec3, _ int) geom.Vec3 { return geom.Apply(m, p) })
}

// finishText stores the box as a textured quad.
func finishText(g *Geometry, b textBox) *Geometry {
	g.RequiresYAxisFlip = true
	g.Transform = geom.NewTransform(b.anchor, geom.PlaneRotation(b.normal, b.rotation), geom.Vec3{1, 1, 1})
	corners := b.corners()
	g.Centroid = geom.CentroidOf(corners)
	g.setBuffers(PrimitiveTriangles, corners, append([]uint32(nil), quadIndices...))
	g.Normals = geom.Flatten(repeat(geom.NormalOrZ(b.normal), 4))
	g.UVs = mesh.CornerUVs()
	g.Material = basicMaterial(g.Color, 0)
	return g
}

func widthFactor(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// ---------------------------------------------------------------------------
// Text and attributes
// ---------------------------------------------------------------------------

func renderText(e entity.Entity, c *Context) *Geometry {
	t, ok := as[entity.Text](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	return textGeometry(c.newGeometry(e), t, "", c.Options.TextAspect)
}

func renderAttribute(e entity.Entity, c *Context) *Geometry {
	a, ok := as[entity.Attribute](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	return textGeometry(c.newGeometry(e), a.Text, a.Tag, c.Options.TextAspect)
}

func textGeometry(g *Geometry, t entity.Text, tag string, aspect float64) *Geometry {
	plain := DecodeSpecialChars(t.Value)
	chars := utf8.RuneCountInString(plain)
	wf := widthFactor(t.WidthFactor)
	n := t.UnitNormal()

	rotation := t.Rotation
	width := t.Height * float64(chars) * aspect * wf
	if t.AlignmentPoint != nil {
		if dir, ok := geom.Normalize(t.AlignmentPoint.Sub(t.InsertPoint)); ok {
			x, y, _ := geom.Basis(n)
			rotation = math.Atan2(dir.Dot(y), dir.Dot(x))
			if t.HAlign == entity.HAlignAligned || t.HAlign == entity.HAlignFit {
				width = geom.Distance(t.InsertPoint, *t.AlignmentPoint)
			}
		}
	}
	height := math.Max(t.Height, 0)
	dx, dy := textOffsets(t.HAlign, t.VAlign, width, height)

	g.Text = &TextSection{
		Value:               t.Value,
		PlainText:           plain,
		Lines:               []string{plain},
		Tag:                 tag,
		Style:               t.Style,
		InsertPoint:         t.InsertPoint,
		AlignmentPoint:      t.AlignmentPoint,
		Height:              t.Height,
		WidthFactor:         wf,
		Rotation:            rotation,
		HorizontalAlignment: hAlignName(t.HAlign),
		VerticalAlignment:   vAlignName(t.VAlign),
		EstimatedWidth:      width,
		EstimatedHeight:     height,
		CharCount:           chars,
	}
	return finishText(g, textBox{
		anchor: t.InsertPoint, normal: n, rotation: rotation,
		width: width, height: height, dx: dx, dy: dy,
	})
}

// textOffsets places the box relative to the anchor on the 3x3 grid of
// left/center/right by bottom/middle/top. Baseline is treated as bottom;
// Middle alignment centers both ways.
func textOffsets(h entity.HAlign, v entity.VAlign, width, height float64) (dx, dy float64) {
	switch h {
	case entity.HAlignCenter, entity.HAlignMiddle:
		dx = -width / 2
	case entity.HAlignRight:
		dx = -width
	}
	switch v {
	case entity.VAlignMiddle:
		dy = -height / 2
	case entity.VAlignTop:
		dy = -height
	}
	if h == entity.HAlignMiddle && v == entity.VAlignBaseline {
		dy = -height / 2
	}
	return dx, dy
}

func hAlignName(h entity.HAlign) string {
	if s, ok := hAlignNames[h]; ok {
		return s
	}
	return hAlignNames[entity.HAlignLeft]
}

func vAlignName(v entity.VAlign) string {
	if s, ok := vAlignNames[v]; ok {
		return s
	}
	return vAlignNames[entity.VAlignBaseline]
}

// ---------------------------------------------------------------------------
// MText
// ---------------------------------------------------------------------------

var attachmentNames = [...]string{
	"", "TopLeft", "TopCenter", "TopRight",
	"MiddleLeft", "MiddleCenter", "MiddleRight",
	"BottomLeft", "BottomCenter", "BottomRight",
}

func renderMText(e entity.Entity, c *Context) *Geometry {
	t, ok := as[entity.MText](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	n := t.UnitNormal()
	plain := StripMTextCodes(t.Value)
	lines := strings.Split(plain, "\n")

	longest := lo.Max(lo.Map(lines, func(l string, _ int) int { return utf8.RuneCountInString(l) }))
	height := math.Max(t.Height, 0)
	width := height * float64(longest) * c.Options.TextAspect
	if t.RectangleWidth > 0 && width > t.RectangleWidth {
		width = t.RectangleWidth
	}
	spacing := t.LineSpacingFactor
	if spacing <= 0 {
		spacing = 1
	}
	total := height + float64(len(lines)-1)*height*mtextLineSpacing*spacing

	rotation := t.Rotation
	if t.Direction.Len() > geom.Epsilon {
		x, y, _ := geom.Basis(n)
		rotation = math.Atan2(t.Direction.Dot(y), t.Direction.Dot(x))
	}

	attach := t.AttachmentPoint
	if attach < entity.AttachTopLeft || attach > entity.AttachBottomRight {
		attach = entity.AttachTopLeft
	}
	col, row := (attach-1)%3, (attach-1)/3
	dx := -float64(col) * width / 2
	dy := -total + float64(row)*total/2

	g.Text = &TextSection{
		Value:               t.Value,
		PlainText:           plain,
		Lines:               lines,
		Style:               t.Style,
		InsertPoint:         t.InsertPoint,
		Height:              t.Height,
		WidthFactor:         1,
		Rotation:            rotation,
		HorizontalAlignment: [...]string{"Left", "Center", "Right"}[col],
		VerticalAlignment:   [...]string{"Top", "Middle", "Bottom"}[row],
		AttachmentPoint:     attach,
		EstimatedWidth:      width,
		EstimatedHeight:     total,
		CharCount:           utf8.RuneCountInString(strings.ReplaceAll(plain, "\n", "")),
	}
	return finishText(g, textBox{
		anchor: t.InsertPoint, normal: n, rotation: rotation,
		width: width, height: total, dx: dx, dy: dy,
	})
}

// AttachmentName returns the name of an MText attachment point.
func AttachmentName(attach int) string {
	if attach < entity.AttachTopLeft || attach > entity.AttachBottomRight {
		return attachmentNames[entity.AttachTopLeft]
	}
	return attachmentNames[attach]
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

func renderShape(e entity.Entity, c *Context) *Geometry {
	s, ok := as[entity.Shape](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	wf := widthFactor(s.WidthFactor)
	size := math.Max(s.Size, 0)
	g.Text = &TextSection{
		Value:               s.Name,
		PlainText:           s.Name,
		Lines:               []string{s.Name},
		ShapeName:           s.Name,
		InsertPoint:         s.InsertPoint,
		Height:              s.Size,
		WidthFactor:         wf,
		Rotation:            s.Rotation,
		HorizontalAlignment: hAlignName(entity.HAlignLeft),
		VerticalAlignment:   vAlignName(entity.VAlignBaseline),
		EstimatedWidth:      size * wf,
		EstimatedHeight:     size,
		CharCount:           1,
	}
	return finishText(g, textBox{
		anchor: s.InsertPoint, normal: s.UnitNormal(), rotation: s.Rotation,
		width: size * wf, height: size,
	})
}

// ---------------------------------------------------------------------------
// Formatting codes
// ---------------------------------------------------------------------------

var (
	mtextParagraph = regexp.MustCompile(`\\P`)
	mtextStacked   = regexp.MustCompile(`\\S([^;^#/]*)[\^#/]([^;]*);`)
	mtextParams    = regexp.MustCompile(`\\[ACcFfHQTWp][^;]*;`)
	mtextToggles   = regexp.MustCompile(`\\[LlOoKkN]`)
	mtextSpace     = regexp.MustCompile(`\\~`)
	specialChars   = strings.NewReplacer(
		"%%d", "°", "%%D", "°",
		"%%p", "±", "%%P", "±",
		"%%c", "⌀", "%%C", "⌀",
		"%%u", "", "%%U", "",
		"%%o", "", "%%O", "",
		"%%%", "%",
	)
)

// StripMTextCodes removes MText inline formatting and returns the plain
// text. Paragraph breaks become newlines and stacked fractions become a/b.
func StripMTextCodes(s string) string {
	s = strings.ReplaceAll(s, `\\`, "\x00")
	s = strings.ReplaceAll(s, `\{`, "\x01")
	s = strings.ReplaceAll(s, `\}`, "\x02")
	s = mtextParagraph.ReplaceAllString(s, "\n")
	s = mtextStacked.ReplaceAllString(s, "$1/$2")
	s = mtextParams.ReplaceAllString(s, "")
	s = mtextToggles.ReplaceAllString(s, "")
	s = mtextSpace.ReplaceAllString(s, " ")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	s = strings.NewReplacer("\x00", `\`, "\x01", "{", "\x02", "}").Replace(s)
	return DecodeSpecialChars(s)
}

// DecodeSpecialChars replaces %% control codes with the characters they
// stand for and drops the underline/overline toggles.
func DecodeSpecialChars(s string) string {
	return specialChars.Replace(s)
}
