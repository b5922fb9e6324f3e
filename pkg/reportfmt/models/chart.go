package models

// ChartType is the chart kind requested by the caller.
type ChartType string

const (
	// ChartLine draws one line per y column.
	ChartLine ChartType = "line"
	// ChartBar draws one column per y value.
	ChartBar ChartType = "bar"
)

// LabelMode controls value labels on chart points.
type LabelMode string

const (
	// LabelsNone attaches no value labels.
	LabelsNone LabelMode = "none"
	// LabelsAll attaches a value label to every point.
	LabelsAll LabelMode = "all"
	// LabelsLast attaches one highlighted label to the final point only.
	LabelsLast LabelMode = "last"
)

// Default chart settings.
const (
	DefaultLabelStride  = 5
	DefaultChartWidth   = 756 // 20cm at 96 dpi
	DefaultChartHeight  = 378 // 10cm
	DefaultAnchor       = "E2"
	DefaultNumberFormat = "0.00"
	DefaultUpColor      = "FF0000"
	DefaultDownColor    = "00B050"
	DefaultDataSource   = "Tushare"
	MeanSeriesName      = "均值"
	DataSheetName       = "数据"
)

// DataSourceCaption renders the attribution line for a data source name.
func DataSourceCaption(source string) string {
	if source == "" {
		source = DefaultDataSource
	}
	return "数据来源：" + source
}

// ChartSpec describes one chart over a dataset.
type ChartSpec struct {
	// Type is line or bar. Unknown values fall back to line.
	Type ChartType `json:"type" yaml:"type"`
	// Title is the chart title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// XColumn is the category column.
	XColumn string `json:"x" yaml:"x"`
	// YColumns are the value columns, in series order. The first is primary.
	YColumns []string `json:"y" yaml:"y"`
	// XAxisTitle is the category axis title.
	XAxisTitle string `json:"x_axis_title,omitempty" yaml:"x_axis_title,omitempty"`
	// YAxisTitle is the value axis title.
	YAxisTitle string `json:"y_axis_title,omitempty" yaml:"y_axis_title,omitempty"`
	// NumberFormat is applied verbatim to the value axis (e.g. "0.00%").
	NumberFormat string `json:"number_format,omitempty" yaml:"number_format,omitempty"`
	// Labels is the label display mode.
	Labels LabelMode `json:"labels,omitempty" yaml:"labels,omitempty"`
	// MeanLine adds a constant series holding the mean of the primary series.
	MeanLine bool `json:"mean_line,omitempty" yaml:"mean_line,omitempty"`
	// UpColor and DownColor are RGB hex colors for non-negative and negative values.
	UpColor   string `json:"up_color,omitempty" yaml:"up_color,omitempty"`
	DownColor string `json:"down_color,omitempty" yaml:"down_color,omitempty"`
	// LabelStride draws every n-th category label.
	LabelStride int `json:"label_stride,omitempty" yaml:"label_stride,omitempty"`
	// Width and Height are the chart size in pixels.
	Width  uint `json:"width,omitempty" yaml:"width,omitempty"`
	Height uint `json:"height,omitempty" yaml:"height,omitempty"`
	// Anchor is the top-left cell of the chart.
	Anchor string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	// DataSource names the data provider in the caption below the table.
	DataSource string `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	// OutputPath persists the workbook when set.
	OutputPath string `json:"output,omitempty" yaml:"output,omitempty"`
}

// WithDefaults returns a copy with unset fields filled in.
func (s ChartSpec) WithDefaults() ChartSpec {
	if s.Type != ChartBar {
		s.Type = ChartLine
	}
	switch s.Labels {
	case LabelsAll, LabelsLast:
	default:
		s.Labels = LabelsNone
	}
	if s.UpColor == "" {
		s.UpColor = DefaultUpColor
	}
	if s.DownColor == "" {
		s.DownColor = DefaultDownColor
	}
	if s.LabelStride <= 0 {
		s.LabelStride = DefaultLabelStride
	}
	if s.Width == 0 {
		s.Width = DefaultChartWidth
	}
	if s.Height == 0 {
		s.Height = DefaultChartHeight
	}
	if s.Anchor == "" {
		s.Anchor = DefaultAnchor
	}
	if s.NumberFormat == "" {
		s.NumberFormat = DefaultNumberFormat
	}
	if s.DataSource == "" {
		s.DataSource = DefaultDataSource
	}
	return s
}

// KnownType reports whether the requested type is recognised as given.
func (s ChartSpec) KnownType() bool {
	return s.Type == ChartLine || s.Type == ChartBar
}

// PriceVolumeSpec describes the dual-axis price (line) and volume (bar) chart.
type PriceVolumeSpec struct {
	Title           string `json:"title,omitempty" yaml:"title,omitempty"`
	PriceAxisTitle  string `json:"price_axis_title,omitempty" yaml:"price_axis_title,omitempty"`
	VolumeAxisTitle string `json:"volume_axis_title,omitempty" yaml:"volume_axis_title,omitempty"`
	XColumn         string `json:"x" yaml:"x"`
	PriceColumn     string `json:"price" yaml:"price"`
	VolumeColumn    string `json:"volume" yaml:"volume"`
	PriceFormat     string `json:"price_format,omitempty" yaml:"price_format,omitempty"`
	VolumeFormat    string `json:"volume_format,omitempty" yaml:"volume_format,omitempty"`
	PriceColor      string `json:"price_color,omitempty" yaml:"price_color,omitempty"`
	VolumeColor     string `json:"volume_color,omitempty" yaml:"volume_color,omitempty"`
	// LabelStride 0 picks one label per tenth of the rows.
	LabelStride int    `json:"label_stride,omitempty" yaml:"label_stride,omitempty"`
	Width       uint   `json:"width,omitempty" yaml:"width,omitempty"`
	Height      uint   `json:"height,omitempty" yaml:"height,omitempty"`
	Anchor      string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	DataSource  string `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	OutputPath  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// WithDefaults returns a copy with unset fields filled in.
func (s PriceVolumeSpec) WithDefaults() PriceVolumeSpec {
	if s.Title == "" {
		s.Title = "股价与成交量"
	}
	if s.XColumn == "" {
		s.XColumn = "date"
	}
	if s.PriceColumn == "" {
		s.PriceColumn = "close"
	}
	if s.VolumeColumn == "" {
		s.VolumeColumn = "volume"
	}
	if s.PriceAxisTitle == "" {
		s.PriceAxisTitle = "价格（元）"
	}
	if s.VolumeAxisTitle == "" {
		s.VolumeAxisTitle = "成交量（手）"
	}
	if s.PriceFormat == "" {
		s.PriceFormat = DefaultNumberFormat
	}
	if s.VolumeFormat == "" {
		s.VolumeFormat = "0"
	}
	if s.PriceColor == "" {
		s.PriceColor = DefaultUpColor
	}
	if s.VolumeColor == "" {
		s.VolumeColor = "A6A6A6"
	}
	if s.Width == 0 {
		s.Width = DefaultChartWidth
	}
	if s.Height == 0 {
		s.Height = DefaultChartHeight
	}
	if s.Anchor == "" {
		s.Anchor = DefaultAnchor
	}
	if s.DataSource == "" {
		s.DataSource = DefaultDataSource
	}
	return s
}
