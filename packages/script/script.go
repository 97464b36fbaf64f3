// Package script applies YAML command scripts to a sheet.
//
// A script is a YAML (or JSON) list of command records:
//
//	- type: set_value
//	  cell: A1
//	  value: 10
//	- type: calculate
//	  range: A1:A4
//	  formula: SUM
package script

import (
	"context"
	"fmt"
	"io"

	"go.alis.build/alog"
	"gopkg.in/yaml.v3"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// Decode reads a script. an empty document is an empty script.
func Decode(r io.Reader) ([]spreadsheet.CommandRecord, error) {
	var records []spreadsheet.CommandRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return records, nil
}

// Outcome is what one command of a script did.
type Outcome struct {
	Record spreadsheet.CommandRecord
	Result spreadsheet.Result
	Err    error
}

// Report collects the outcomes of a script run in order.
type Report struct {
	Outcomes []Outcome
	Failed   int
}

// Run applies records to s in order. a rejected command is reported and
// the run carries on with the next one; the sheet is left as the rejected
// command found it.
func Run(ctx context.Context, s *spreadsheet.Sheet, records []spreadsheet.CommandRecord) (Report, error) {
	report := Report{Outcomes: make([]Outcome, 0, len(records))}
	runner := spreadsheet.NewRunner(s)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := Outcome{Record: rec}
		cmd, err := spreadsheet.DecodeCommand(rec)
		if err == nil {
			out.Result, err = runner.Run(cmd).Result()
		}
		if err != nil {
			out.Err = err
			report.Failed++
			alog.Warnf(ctx, "command %d (%s) rejected: %v", i+1, rec.Type, err)
		} else {
			alog.Debugf(ctx, "command %d: %s", i+1, out.Result.Message)
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	return report, nil
}
