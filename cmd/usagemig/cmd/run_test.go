package cmd

import (
	"bytes"
	"testing"

	"github.com/snikjou/usagemig/internal/migrate"
	"github.com/snikjou/usagemig/internal/output"

	"github.com/stretchr/testify/assert"
)

func TestReportResult_NeverEscalates(t *testing.T) {
	tests := []struct {
		name string
		res  *migrate.Result
	}{
		{
			name: "clean run",
			res:  &migrate.Result{Discovered: 12, Pending: 7, Updated: 7, Skipped: 5},
		},
		{
			name: "per-document failures end in the summary",
			res:  &migrate.Result{Discovered: 12, Pending: 7, Updated: 6, Skipped: 5, Errors: 1},
		},
		{
			name: "spot check mismatches end in the summary",
			res: &migrate.Result{
				Discovered: 12, Pending: 7, Updated: 7, Skipped: 5,
				SpotCheck: &migrate.SpotCheckResult{
					Checked: 5,
					Mismatches: []migrate.FieldMismatch{
						{DocumentID: "msg-1", Field: "content", Before: "a", After: "b"},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			old := output.Stdout
			output.Stdout = &buf
			defer func() { output.Stdout = old }()

			assert.NoError(t, reportResult(tt.res))
			assert.Contains(t, buf.String(), "Updated")
		})
	}
}
