package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// seriesLocation holds byte offsets inside a chart part.
type seriesLocation struct {
	dLblsStart int64
	dLblsEnd   int64
}

// pointStyle is one c:dPt override.
type pointStyle struct {
	fill   string // bar fill color
	marker string // line marker color
}

// seriesPatch describes point-level edits to one series.
type seriesPatch struct {
	points map[int]pointStyle
	// labels replaces the series c:dLbls element when non-empty.
	labels string
}

// locateSeries finds the c:dLbls element of every c:ser in document order.
func locateSeries(data []byte) ([]seriesLocation, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var result []seriesLocation
	serDepth, depth := 0, 0
	cur := -1

	for {
		offset := decoder.InputOffset()
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan chart part: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch {
			case t.Name.Local == "ser" && serDepth == 0:
				serDepth = depth
				result = append(result, seriesLocation{dLblsStart: -1, dLblsEnd: -1})
				cur = len(result) - 1
			case t.Name.Local == "dLbls" && serDepth > 0 && depth == serDepth+1:
				result[cur].dLblsStart = offset
			}
		case xml.EndElement:
			if t.Name.Local == "dLbls" && serDepth > 0 && depth == serDepth+1 {
				result[cur].dLblsEnd = decoder.InputOffset()
			}
			if t.Name.Local == "ser" && depth == serDepth {
				serDepth = 0
			}
			depth--
		}
	}
	return result, nil
}

// applySeriesPatches inserts c:dPt elements before each patched series'
// c:dLbls and optionally replaces the c:dLbls element.
func applySeriesPatches(data []byte, patches map[int]seriesPatch) ([]byte, error) {
	locs, err := locateSeries(data)
	if err != nil {
		return nil, err
	}

	type edit struct {
		start, end int64
		text       string
	}
	var edits []edit
	for idx, p := range patches {
		if idx < 0 || idx >= len(locs) {
			return nil, fmt.Errorf("series %d not found in chart part", idx)
		}
		loc := locs[idx]
		if loc.dLblsStart < 0 || loc.dLblsEnd < 0 {
			return nil, fmt.Errorf("series %d has no data labels element", idx)
		}
		if pts := renderDataPoints(p.points); pts != "" {
			edits = append(edits, edit{start: loc.dLblsStart, end: loc.dLblsStart, text: pts})
		}
		if p.labels != "" {
			edits = append(edits, edit{start: loc.dLblsStart, end: loc.dLblsEnd, text: p.labels})
		}
	}
	// apply from the back so earlier offsets stay valid; at equal offsets the
	// replacement goes first so the inserted points precede it
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start > edits[j].start
		}
		return edits[i].end > edits[j].end
	})
	out := data
	for _, e := range edits {
		var buf bytes.Buffer
		buf.Grow(len(out) + len(e.text))
		buf.Write(out[:e.start])
		buf.WriteString(e.text)
		buf.Write(out[e.end:])
		out = buf.Bytes()
	}
	return out, nil
}

func solidFill(color string) string {
	return `<a:solidFill><a:srgbClr val="` + color + `"/></a:solidFill>`
}

// renderDataPoints renders c:dPt elements in index order.
func renderDataPoints(points map[int]pointStyle) string {
	if len(points) == 0 {
		return ""
	}
	idx := make([]int, 0, len(points))
	for i := range points {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	var sb strings.Builder
	for _, i := range idx {
		p := points[i]
		fmt.Fprintf(&sb, `<dPt><idx val="%d"/>`, i)
		if p.fill != "" {
			sb.WriteString(`<invertIfNegative val="0"/>`)
		}
		if p.marker != "" {
			sb.WriteString(`<marker><symbol val="circle"/><size val="7"/><spPr>` +
				solidFill(p.marker) + `<a:ln>` + solidFill(p.marker) + `</a:ln></spPr></marker>`)
		}
		sb.WriteString(`<bubble3D val="0"/>`)
		if p.fill != "" {
			sb.WriteString(`<spPr>` + solidFill(p.fill) + `</spPr>`)
		}
		sb.WriteString(`</dPt>`)
	}
	return sb.String()
}

const labelFlagsOff = `<showLegendKey val="0"/><showVal val="0"/><showCatName val="0"/>` +
	`<showSerName val="0"/><showPercent val="0"/><showBubbleSize val="0"/>`

// renderLastLabel renders a c:dLbls holding a single value label on point
// idx, bold and in color.
func renderLastLabel(idx int, numFmt, color, position string) string {
	var sb strings.Builder
	sb.WriteString(`<dLbls><dLbl>`)
	fmt.Fprintf(&sb, `<idx val="%d"/>`, idx)
	if numFmt != "" {
		var esc bytes.Buffer
		_ = xml.EscapeText(&esc, []byte(numFmt))
		fmt.Fprintf(&sb, `<numFmt formatCode="%s" sourceLinked="0"/>`, esc.String())
	}
	sb.WriteString(`<spPr><a:noFill/><a:ln><a:noFill/></a:ln></spPr>`)
	sb.WriteString(`<txPr><a:bodyPr/><a:lstStyle/><a:p><a:pPr><a:defRPr b="1">` +
		solidFill(color) + `</a:defRPr></a:pPr><a:endParaRPr lang="en-US"/></a:p></txPr>`)
	fmt.Fprintf(&sb, `<dLblPos val="%s"/>`, position)
	sb.WriteString(`<showLegendKey val="0"/><showVal val="1"/><showCatName val="0"/>` +
		`<showSerName val="0"/><showPercent val="0"/><showBubbleSize val="0"/>`)
	sb.WriteString(`</dLbl>` + labelFlagsOff + `</dLbls>`)
	return sb.String()
}

// deletedLabels hides every label of a series.
const deletedLabels = `<dLbls><delete val="1"/></dLbls>`
