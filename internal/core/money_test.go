package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "5", want: "5"},
		{name: "two decimals", input: "10.50", want: "10.5"},
		{name: "comma separator", input: "10,50", want: "10.5"},
		{name: "leading whitespace", input: "  3.25", want: "3.25"},
		{name: "zero", input: "0", want: "0"},
		{name: "empty", input: "", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "mixed", input: "12abc", wantErr: true},
		{name: "explicit plus sign", input: "+5", wantErr: true},
		{name: "negative sign", input: "-5", wantErr: true},
		{name: "two dots", input: "1.2.3", wantErr: true},
		{name: "lone dot", input: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) error = %v", tt.input, err)
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestFormatGBP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "zero", input: "0", want: "£0.00"},
		{name: "two decimals", input: "10.5", want: "£10.50"},
		{name: "rounds to two places", input: "10.505", want: "£10.51"},
		{name: "negative", input: "-5", want: "£-5.00"},
		{name: "large", input: "12345.6", want: "£12345.60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			if err != nil {
				t.Fatalf("bad test input %q: %v", tt.input, err)
			}
			if got := FormatGBP(d); got != tt.want {
				t.Errorf("FormatGBP(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
