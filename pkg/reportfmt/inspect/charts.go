package inspect

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      "Line",
	"line3DChart":    "3DLine",
	"barChart":       "Bar",
	"bar3DChart":     "3DBar",
	"areaChart":      "Area",
	"area3DChart":    "3DArea",
	"pieChart":       "Pie",
	"pie3DChart":     "3DPie",
	"doughnutChart":  "Doughnut",
	"scatterChart":   "XYScatter",
	"bubbleChart":    "Bubble",
	"radarChart":     "Radar",
	"surfaceChart":   "Surface",
	"surface3DChart": "3DSurface",
	"stockChart":     "Stock",
	"ofPieChart":     "PieOfPie",
}

// chartAnchor holds what the drawing part says about one chart.
type chartAnchor struct {
	name     string
	rID      string
	from, to string
}

// sheetCharts reads the charts drawn on one worksheet.
func sheetCharts(r *zip.Reader, sheetPart string) ([]Chart, error) {
	drawings, err := partRelationships(r, sheetPart, "drawing")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(drawings))
	for id := range drawings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var charts []Chart
	for _, id := range ids {
		drawingPart := drawings[id]
		drawingXML, err := readZipFile(r, drawingPart)
		if err != nil || drawingXML == nil {
			continue
		}
		chartParts, err := partRelationships(r, drawingPart, "chart")
		if err != nil {
			return nil, err
		}
		for _, anchor := range parseDrawingForCharts(drawingXML) {
			part, ok := chartParts[anchor.rID]
			if !ok {
				continue
			}
			data, err := readZipFile(r, part)
			if err != nil || data == nil {
				continue
			}
			chart := ParseChartXML(data)
			chart.Name = anchor.name
			chart.Part = part
			chart.From, chart.To = anchor.from, anchor.to
			charts = append(charts, chart)
		}
	}
	return charts, nil
}

// parseDrawingForCharts finds graphic frames that reference charts.
func parseDrawingForCharts(data []byte) []chartAnchor {
	var result []chartAnchor
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok {
			switch se.Name.Local {
			case "twoCellAnchor", "oneCellAnchor":
				if a := parseAnchor(decoder); a.rID != "" {
					result = append(result, a)
				}
			}
		}
	}

	return result
}

// parseAnchor reads the cell anchors and chart reference of one anchor.
func parseAnchor(decoder *xml.Decoder) chartAnchor {
	var a chartAnchor
	var fromCol, fromRow, toCol, toRow int
	var hasTo bool
	walkElement(decoder, func(path []string, se xml.StartElement) {
		switch {
		case len(path) == 1 && path[0] == "to":
			hasTo = true
		case se.Name.Local == "cNvPr":
			a.name = attr(se, "name")
		case se.Name.Local == "chart":
			a.rID = attr(se, "id")
		}
	}, func(path []string, text string) {
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return
		}
		switch {
		case pathIs(path, "from", "col"):
			fromCol = v
		case pathIs(path, "from", "row"):
			fromRow = v
		case pathIs(path, "to", "col"):
			toCol = v
		case pathIs(path, "to", "row"):
			toRow = v
		}
	})
	a.from, _ = excelize.CoordinatesToCellName(fromCol+1, fromRow+1)
	if hasTo {
		a.to, _ = excelize.CoordinatesToCellName(toCol+1, toRow+1)
	}
	return a
}

// ParseChartXML parses a chart part.
func ParseChartXML(data []byte) Chart {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var chart Chart

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "chart" {
			parseChartElement(decoder, &chart)
		}
	}

	return chart
}

// parseChartElement parses c:chart element.
func parseChartElement(decoder *xml.Decoder, chart *Chart) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "title":
				chart.Title = parseChartTitle(decoder)
				depth--
			case "plotArea":
				parsePlotArea(decoder, chart)
				depth--
			case "legend":
				chart.Legend = parseLegend(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
}

// parseChartTitle concatenates the a:t runs of a title.
func parseChartTitle(decoder *xml.Decoder) string {
	var sb strings.Builder
	walkElement(decoder, nil, func(path []string, text string) {
		if path[len(path)-1] == "t" {
			sb.WriteString(text)
		}
	})
	return strings.TrimSpace(sb.String())
}

func parseLegend(decoder *xml.Decoder) string {
	pos := "r"
	walkElement(decoder, func(path []string, se xml.StartElement) {
		if pathIs(path, "legendPos") {
			pos = attr(se, "val")
		}
	}, nil)
	return pos
}

// parsePlotArea parses plot area element.
func parsePlotArea(decoder *xml.Decoder, chart *Chart) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if ct, ok := ChartTypeMap[t.Name.Local]; ok {
				chart.Types = append(chart.Types, ct)
				chart.Series = append(chart.Series, parseChartSeries(decoder, ct)...)
				depth--
				continue
			}
			switch t.Name.Local {
			case "valAx", "catAx", "dateAx", "serAx":
				chart.Axes = append(chart.Axes, parseAxis(decoder, t.Name.Local))
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
}

// parseChartSeries parses series elements within a chart type.
func parseChartSeries(decoder *xml.Decoder, chartType string) []Series {
	var series []Series
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "ser" {
				s := parseSingleSeries(decoder)
				s.Type = chartType
				series = append(series, s)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return series
}

// parseSingleSeries parses a single series element.
func parseSingleSeries(decoder *xml.Decoder) Series {
	var s Series
	var point *DataPoint

	walkElement(decoder, func(path []string, se xml.StartElement) {
		switch {
		case pathIs(path, "idx"):
			s.Index = attrInt(se, "val")
		case pathIs(path, "spPr", "solidFill", "srgbClr"):
			s.Fill = attr(se, "val")
		case pathIs(path, "spPr", "ln", "solidFill", "srgbClr"):
			s.LineColor = attr(se, "val")
		case pathIs(path, "spPr", "ln", "prstDash"):
			s.Dash = attr(se, "val")
		case pathIs(path, "marker", "symbol"):
			s.Marker = attr(se, "val")

		case pathIs(path, "dPt"):
			s.DataPoints = append(s.DataPoints, DataPoint{})
			point = &s.DataPoints[len(s.DataPoints)-1]
		case pathIs(path, "dPt", "idx") && point != nil:
			point.Index = attrInt(se, "val")
		case pathIs(path, "dPt", "spPr", "solidFill", "srgbClr") && point != nil:
			point.Fill = attr(se, "val")
		case pathIs(path, "dPt", "marker", "spPr", "solidFill", "srgbClr") && point != nil:
			point.Marker = attr(se, "val")

		case pathIs(path, "dLbls", "delete"):
			s.LabelsDeleted = onOff(se)
		case pathIs(path, "dLbls", "showVal"):
			s.ShowValue = onOff(se)
		case pathIs(path, "dLbls", "dLbl", "idx"):
			s.LabelPoints = append(s.LabelPoints, attrInt(se, "val"))
		case len(path) > 3 && pathIs(path[:2], "dLbls", "dLbl") && path[len(path)-1] == "srgbClr" &&
			path[2] == "txPr":
			s.LabelColor = attr(se, "val")
		}
	}, func(path []string, text string) {
		switch {
		case pathIs(path, "tx", "strRef", "f"):
			s.NameRange += strings.TrimSpace(text)
		case pathIs(path, "tx", "strRef", "strCache", "pt", "v"), pathIs(path, "tx", "v"):
			s.Name += strings.TrimSpace(text)
		case len(path) == 3 && path[0] == "cat" && path[2] == "f":
			s.XRange += strings.TrimSpace(text)
		case len(path) == 3 && path[0] == "val" && path[2] == "f":
			s.YRange += strings.TrimSpace(text)
		}
	})

	if area := parseRangeToArea(s.YRange); area != nil {
		s.Points = (area.R2 - area.R1 + 1) * (area.C2 - area.C1 + 1)
	}
	return s
}

// parseAxis parses a category or value axis element.
func parseAxis(decoder *xml.Decoder, kind string) Axis {
	ax := Axis{Kind: kind}
	var title strings.Builder

	walkElement(decoder, func(path []string, se xml.StartElement) {
		switch {
		case pathIs(path, "axId"):
			ax.ID = attr(se, "val")
		case pathIs(path, "delete"):
			ax.Deleted = onOff(se)
		case pathIs(path, "axPos"):
			ax.Position = attr(se, "val")
		case pathIs(path, "numFmt"):
			ax.NumberFormat = attr(se, "formatCode")
		case pathIs(path, "crosses"):
			ax.Crosses = attr(se, "val")
		case pathIs(path, "majorGridlines"):
			ax.MajorGridlines = true
		case pathIs(path, "tickLblSkip"):
			ax.TickLabelSkip = attrInt(se, "val")
		}
	}, func(path []string, text string) {
		if path[0] == "title" && path[len(path)-1] == "t" {
			title.WriteString(text)
		}
	})

	ax.Title = strings.TrimSpace(title.String())
	return ax
}
