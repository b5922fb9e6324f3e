package inspect

// PrintArea represents cell coordinate bounds for a print area.
type PrintArea struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// DataPoint is a per-point override inside a series.
type DataPoint struct {
	Index int `json:"idx"`
	// Fill is the solid fill color of a bar.
	Fill string `json:"fill,omitempty"`
	// Marker is the marker fill color of a line point.
	Marker string `json:"marker,omitempty"`
}

// Series represents series metadata for a chart.
type Series struct {
	// Type is the chart group the series belongs to (Line, Bar, ...).
	Type  string `json:"type"`
	Index int    `json:"idx"`
	// Name is the cached series name, NameRange the reference it came from.
	Name      string `json:"name,omitempty"`
	NameRange string `json:"name_range,omitempty"`
	// XRange and YRange are the category and value references.
	XRange string `json:"x_range,omitempty"`
	YRange string `json:"y_range,omitempty"`
	// Points is the number of values covered by YRange.
	Points     int         `json:"points"`
	Fill       string      `json:"fill,omitempty"`
	LineColor  string      `json:"line_color,omitempty"`
	Dash       string      `json:"dash,omitempty"`
	Marker     string      `json:"marker,omitempty"`
	DataPoints []DataPoint `json:"data_points,omitempty"`
	// ShowValue reports series-wide value labels.
	ShowValue bool `json:"show_value"`
	// LabelsDeleted reports that every label of the series is hidden.
	LabelsDeleted bool `json:"labels_deleted"`
	// LabelPoints lists the indices of individually labelled points.
	LabelPoints []int  `json:"label_points,omitempty"`
	LabelColor  string `json:"label_color,omitempty"`
}

// Axis describes a category or value axis.
type Axis struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	Position       string `json:"position,omitempty"`
	Deleted        bool   `json:"deleted"`
	Title          string `json:"title,omitempty"`
	NumberFormat   string `json:"number_format,omitempty"`
	Crosses        string `json:"crosses,omitempty"`
	MajorGridlines bool   `json:"major_gridlines"`
	TickLabelSkip  int    `json:"tick_label_skip,omitempty"`
}

// Chart represents chart metadata including series and axes.
type Chart struct {
	// Name is the drawing object name.
	Name string `json:"name"`
	// Part is the chart part path inside the package.
	Part string `json:"part"`
	// Types lists the chart groups in plot order.
	Types []string `json:"types"`
	Title string   `json:"title,omitempty"`
	// Legend is the legend position, empty when there is no legend.
	Legend string `json:"legend,omitempty"`
	// From and To are the anchor cells.
	From   string   `json:"from,omitempty"`
	To     string   `json:"to,omitempty"`
	Series []Series `json:"series"`
	Axes   []Axis   `json:"axes"`
}

// ValueAxes returns the value axes in plot order.
func (c Chart) ValueAxes() []Axis {
	var axes []Axis
	for _, a := range c.Axes {
		if a.Kind == "valAx" {
			axes = append(axes, a)
		}
	}
	return axes
}

// Sheet is one worksheet of an inspected workbook.
type Sheet struct {
	Name       string      `json:"name"`
	Rows       [][]string  `json:"rows,omitempty"`
	Charts     []Chart     `json:"charts,omitempty"`
	PrintAreas []PrintArea `json:"print_areas,omitempty"`
}

// Workbook is the inspected content of an xlsx package.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
}

// Sheet returns the named sheet.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// Run is one text run of a paragraph.
type Run struct {
	Text string `json:"text,omitempty"`
	// Font is the East Asian font, ASCIIFont the Latin one.
	Font      string `json:"font,omitempty"`
	ASCIIFont string `json:"ascii_font,omitempty"`
	// Size is in half-points.
	Size  int    `json:"size,omitempty"`
	Bold  bool   `json:"bold"`
	Color string `json:"color,omitempty"`
}

// Paragraph is one w:p with its resolved properties.
type Paragraph struct {
	Style string `json:"style,omitempty"`
	// Align is the w:jc value.
	Align string `json:"align,omitempty"`
	Text  string `json:"text"`
	Runs  []Run  `json:"runs,omitempty"`
	// Spacing and indentation are in twips; Line in 240ths of a line.
	SpaceBefore int `json:"space_before,omitempty"`
	SpaceAfter  int `json:"space_after,omitempty"`
	Line        int `json:"line,omitempty"`
	FirstLine   int `json:"first_line,omitempty"`
	Left        int `json:"left,omitempty"`
	Hanging     int `json:"hanging,omitempty"`
	// NumID is the numbering instance, 0 when not a list item.
	NumID      int      `json:"num_id,omitempty"`
	KeepNext   bool     `json:"keep_next,omitempty"`
	PageBreaks int      `json:"page_breaks,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	Drawings   int      `json:"drawings,omitempty"`
}

// Border is one table border edge.
type Border struct {
	Val   string `json:"val"`
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// TableCell is one w:tc.
type TableCell struct {
	Text       string      `json:"text"`
	VAlign     string      `json:"valign,omitempty"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
}

// TableRow is one w:tr.
type TableRow struct {
	Header bool        `json:"header"`
	Cells  []TableCell `json:"cells"`
}

// Table is one w:tbl.
type Table struct {
	Align   string            `json:"align,omitempty"`
	Borders map[string]Border `json:"borders"`
	Rows    []TableRow        `json:"rows"`
	// After is the number of body paragraphs preceding the table.
	After int `json:"after"`
}

// Section holds page geometry in twips.
type Section struct {
	PageWidth    int    `json:"page_width"`
	PageHeight   int    `json:"page_height"`
	MarginTop    int    `json:"margin_top"`
	MarginBottom int    `json:"margin_bottom"`
	MarginLeft   int    `json:"margin_left"`
	MarginRight  int    `json:"margin_right"`
	Header       int    `json:"header"`
	Footer       int    `json:"footer"`
	FooterRef    string `json:"footer_ref,omitempty"`
}

// Document is the inspected content of a docx package.
type Document struct {
	Title      string      `json:"title,omitempty"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Tables     []Table     `json:"tables,omitempty"`
	Section    Section     `json:"section"`
	Footer     []Paragraph `json:"footer,omitempty"`
	Media      []string    `json:"media,omitempty"`
}

// PageBreaks counts explicit page breaks in body paragraphs.
func (d *Document) PageBreaks() int {
	n := 0
	for _, p := range d.Paragraphs {
		n += p.PageBreaks
	}
	return n
}
