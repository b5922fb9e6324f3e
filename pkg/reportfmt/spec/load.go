// Package spec loads document specs, chart jobs and datasets from YAML, JSON
// and xlsx files. Spec files are checked against embedded JSON Schemas before
// they are decoded.
package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
)

// ChartJob is one chart to build: a chart spec or a price-volume spec, plus
// its data given inline or as a file.
type ChartJob struct {
	Chart       *models.ChartSpec       `json:"chart,omitempty"`
	PriceVolume *models.PriceVolumeSpec `json:"price_volume,omitempty"`
	Data        models.Dataset          `json:"data,omitempty"`
	// DataFile is a JSON, YAML or xlsx file, relative to the job file.
	DataFile string `json:"data_file,omitempty"`
	// Sheet selects the xlsx sheet; the first sheet by default.
	Sheet string `json:"sheet,omitempty"`
}

// decodeFile reads a YAML or JSON file into plain JSON values.
func decodeFile(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data, strings.ToLower(filepath.Ext(path)))
}

func decode(data []byte, ext string) (interface{}, error) {
	var doc interface{}
	if ext == ".json" {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, reportfmt.NewValidationError("document", "invalid JSON: %v", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, reportfmt.NewValidationError("document", "invalid YAML: %v", err)
	}
	return normalize(doc), nil
}

// normalize turns YAML maps with non-string keys into JSON objects.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []interface{}:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}

// convert re-encodes a validated document into its typed form.
func convert(doc interface{}, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return reportfmt.NewValidationError("document", "%v", err)
	}
	return nil
}

// ParseDocument validates and decodes a document spec. ext selects JSON
// (".json") or YAML (anything else).
func ParseDocument(data []byte, ext string) (models.DocumentSpec, error) {
	var spec models.DocumentSpec
	doc, err := decode(data, ext)
	if err != nil {
		return spec, err
	}
	if err := validateAgainst(documentSchema, doc); err != nil {
		return spec, err
	}
	if err := convert(doc, &spec); err != nil {
		return spec, err
	}
	return spec, nil
}

// LoadDocument reads a document spec. Relative figure paths are resolved
// against the spec file's directory.
func LoadDocument(path string) (models.DocumentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.DocumentSpec{}, fmt.Errorf("failed to read document spec: %w", err)
	}
	spec, err := ParseDocument(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return spec, err
	}
	base := filepath.Dir(path)
	for i := range spec.Sections {
		for j := range spec.Sections[i].Figures {
			fig := &spec.Sections[i].Figures[j]
			fig.Path = resolve(base, fig.Path)
		}
	}
	return spec, nil
}

// ParseChartJob validates and decodes a chart job without loading data files.
func ParseChartJob(data []byte, ext string) (ChartJob, error) {
	var job ChartJob
	doc, err := decode(data, ext)
	if err != nil {
		return job, err
	}
	if err := validateAgainst(chartJobSchema, doc); err != nil {
		return job, err
	}
	if err := convert(doc, &job); err != nil {
		return job, err
	}
	return job, nil
}

// LoadChartJob reads a chart job and its dataset.
func LoadChartJob(path string) (ChartJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChartJob{}, fmt.Errorf("failed to read chart job: %w", err)
	}
	job, err := ParseChartJob(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return job, err
	}
	if len(job.Data) == 0 && job.DataFile != "" {
		job.DataFile = resolve(filepath.Dir(path), job.DataFile)
		ds, err := LoadDataset(job.DataFile, job.Sheet)
		if err != nil {
			return job, err
		}
		job.Data = ds
	}
	return job, nil
}

// LoadDataset reads records from an xlsx sheet or a JSON/YAML array of
// objects.
func LoadDataset(path, sheet string) (models.Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" || ext == ".xlsm" {
		return DatasetFromXLSX(path, sheet)
	}
	doc, err := decodeFile(path)
	if err != nil {
		if reportfmt.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	items, ok := doc.([]interface{})
	if !ok {
		return nil, reportfmt.NewValidationError("dataset", "%s must hold a list of records", filepath.Base(path))
	}
	ds := make(models.Dataset, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]interface{})
		if !ok {
			return nil, reportfmt.NewValidationError(fmt.Sprintf("dataset[%d]", i), "record must be an object")
		}
		ds = append(ds, models.Record(rec))
	}
	return ds, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Kind tells document specs and chart jobs apart.
type Kind int

const (
	KindUnknown Kind = iota
	KindDocument
	KindChartJob
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindChartJob:
		return "chart"
	}
	return "unknown"
}

// Detect classifies a spec file by its top-level keys without validating it.
func Detect(path string) (Kind, error) {
	doc, err := decodeFile(path)
	if err != nil {
		return KindUnknown, err
	}
	m, ok := doc.(map[string]interface{})
	if !ok {
		return KindUnknown, nil
	}
	if _, ok := m["chart"]; ok {
		return KindChartJob, nil
	}
	if _, ok := m["price_volume"]; ok {
		return KindChartJob, nil
	}
	if _, ok := m["title"]; ok {
		return KindDocument, nil
	}
	return KindUnknown, nil
}
