package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ExportVersion is written to every exported trace header.
const ExportVersion = 1

// TraceHeader captures the run that produced an exported trace.
type TraceHeader struct {
	Version        int     `yaml:"trace_version"`
	RunID          string  `yaml:"run_id,omitempty"`
	CreatedAt      string  `yaml:"created_at,omitempty"`
	TimeUnit       string  `yaml:"time_unit"`
	Scenario       string  `yaml:"scenario"`
	Seed           int64   `yaml:"seed"`
	Horizon        float64 `yaml:"horizon"`
	LegitimateRate float64 `yaml:"legitimate_rate"`
	AttackRate     float64 `yaml:"attack_rate"`
}

// Row kinds in the decision CSV.
const (
	rowAdmission = "admission"
	rowScaling   = "scaling"
)

// CSV column headers for the decision file. Admission rows leave the scaling
// columns empty and vice versa.
var traceColumns = []string{
	"kind", "clock", "request_id", "class", "admitted", "reason", "in_service", "queued",
	"direction", "from_capacity", "to_capacity", "active_windows",
}

// ExportTrace writes header (YAML) and the decisions of st (CSV) to separate
// files. Rows are ordered by clock; admissions sort before scalings at equal clock.
func ExportTrace(header *TraceHeader, st *SimulationTrace, headerPath, dataPath string) error {
	if header.Version == 0 {
		header.Version = ExportVersion
	}
	headerData, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling trace header: %w", err)
	}
	if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating trace data file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(traceColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range traceRows(st) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing trace data: %w", err)
	}
	return nil
}

// traceRows flattens both record kinds into CSV rows ordered by clock.
func traceRows(st *SimulationTrace) [][]string {
	if st == nil {
		return nil
	}
	type timedRow struct {
		clock float64
		row   []string
	}
	rows := make([]timedRow, 0, len(st.Admissions)+len(st.Scalings))
	for _, a := range st.Admissions {
		rows = append(rows, timedRow{a.Clock, []string{
			rowAdmission,
			formatFloat(a.Clock),
			a.RequestID,
			a.Class,
			strconv.FormatBool(a.Admitted),
			a.Reason,
			strconv.Itoa(a.InService),
			strconv.Itoa(a.Queued),
			"", "", "", "",
		}})
	}
	for _, s := range st.Scalings {
		rows = append(rows, timedRow{s.Clock, []string{
			rowScaling,
			formatFloat(s.Clock),
			"", "", "", "", "",
			strconv.Itoa(s.QueueLength),
			string(s.Direction),
			strconv.Itoa(s.FromCapacity),
			strconv.Itoa(s.ToCapacity),
			strconv.Itoa(s.ActiveWindows),
		}})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].clock < rows[j].clock })

	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// LoadTrace reads an exported header (YAML) and decision file (CSV).
func LoadTrace(headerPath, dataPath string) (*TraceHeader, *SimulationTrace, error) {
	headerData, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading trace header: %w", err)
	}
	var header TraceHeader
	if err := yaml.Unmarshal(headerData, &header); err != nil {
		return nil, nil, fmt.Errorf("parsing trace header: %w", err)
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening trace data: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(traceColumns)
	if _, err := reader.Read(); err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}

	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if err := parseTraceRow(st, row); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return &header, st, nil
}

// parseTraceRow appends the record encoded by row to st.
func parseTraceRow(st *SimulationTrace, row []string) error {
	p := rowParser{row: row}
	clock := p.floatAt(1)
	switch row[0] {
	case rowAdmission:
		rec := AdmissionRecord{
			RequestID: row[2],
			Class:     row[3],
			Clock:     clock,
			Admitted:  p.boolAt(4),
			Reason:    row[5],
			InService: p.intAt(6),
			Queued:    p.intAt(7),
		}
		if p.err != nil {
			return p.err
		}
		st.RecordAdmission(rec)
	case rowScaling:
		rec := ScalingRecord{
			Clock:         clock,
			Direction:     ScalingDirection(row[8]),
			FromCapacity:  p.intAt(9),
			ToCapacity:    p.intAt(10),
			QueueLength:   p.intAt(7),
			ActiveWindows: p.intAt(11),
		}
		if p.err != nil {
			return p.err
		}
		st.RecordScaling(rec)
	default:
		return fmt.Errorf("unknown row kind %q", row[0])
	}
	return nil
}

// rowParser converts CSV cells and keeps the first conversion error.
type rowParser struct {
	row []string
	err error
}

func (p *rowParser) intAt(i int) int {
	v, err := strconv.Atoi(p.row[i])
	p.keep(i, err)
	return v
}

func (p *rowParser) floatAt(i int) float64 {
	v, err := strconv.ParseFloat(p.row[i], 64)
	p.keep(i, err)
	return v
}

func (p *rowParser) boolAt(i int) bool {
	v, err := strconv.ParseBool(p.row[i])
	p.keep(i, err)
	return v
}

func (p *rowParser) keep(i int, err error) {
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", traceColumns[i], err)
	}
}
