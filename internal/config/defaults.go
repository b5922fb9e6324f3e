package config

import "github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:  ".",
		DataSource: models.DefaultDataSource,
		Chart: ChartDefaults{
			UpColor:     models.DefaultUpColor,
			DownColor:   models.DefaultDownColor,
			LabelStride: models.DefaultLabelStride,
			Width:       models.DefaultChartWidth,
			Height:      models.DefaultChartHeight,
		},
	}
}
