package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantFirst   string
		wantLast    string
		diagnostics int
	}{
		{
			name:      "comma separated",
			input:     "Buurman, Merret",
			wantFirst: "Merret",
			wantLast:  "Buurman",
		},
		{
			name:      "comma separated double first name",
			input:     "Noteboom, Jan Willem",
			wantFirst: "Jan Willem",
			wantLast:  "Noteboom",
		},
		{
			name:      "two commas split once",
			input:     "A, B, C",
			wantFirst: "B, C",
			wantLast:  "A",
		},
		{
			name:        "space separated",
			input:       "Kevin Balem",
			wantFirst:   "Kevin",
			wantLast:    "Balem",
			diagnostics: 1,
		},
		{
			name:        "three tokens",
			input:       "Jan Willem Noteboom",
			wantFirst:   "Jan Willem",
			wantLast:    "Noteboom",
			diagnostics: 2,
		},
		{
			name:      "empty",
			input:     "",
			wantFirst: "",
			wantLast:  "",
		},
		{
			name:        "single token",
			input:       "Madonna",
			wantFirst:   "",
			wantLast:    "Madonna",
			diagnostics: 2,
		},
		{
			name:        "four tokens",
			input:       "Anna Maria van Dam",
			wantFirst:   "",
			wantLast:    "Anna Maria van Dam",
			diagnostics: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := &Diagnostics{}
			first, last := SplitName(d, tc.input, "maincontact_name")
			assert.Equal(t, tc.wantFirst, first)
			assert.Equal(t, tc.wantLast, last)
			assert.Equal(t, tc.diagnostics, d.Len(), "diagnostics: %v", d.Messages())
		})
	}
}
