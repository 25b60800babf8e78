package main

import (
	"reflect"
	"strings"
	"testing"
)

func Test_parseTopology(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []Edge
		wantErr bool
	}{
		{
			name: "one edge per line",
			in:   "1 2 5\n2 3 1\n",
			want: []Edge{
				{U: 1, V: 2, Cost: 5},
				{U: 2, V: 3, Cost: 1},
			},
		},
		{
			name: "whitespace tolerant",
			in:   "  1   2\t5\n\n 2\n3 1",
			want: []Edge{
				{U: 1, V: 2, Cost: 5},
				{U: 2, V: 3, Cost: 1},
			},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "duplicate edges kept",
			in:   "1 2 5\n1 2 5\n",
			want: []Edge{
				{U: 1, V: 2, Cost: 5},
				{U: 1, V: 2, Cost: 5},
			},
		},
		{
			name:    "not an integer",
			in:      "1 two 5\n",
			wantErr: true,
		},
		{
			name:    "truncated triple",
			in:      "1 2 5\n3 4\n",
			wantErr: true,
		},
		{
			name:    "self-loop rejected",
			in:      "3 3 5\n",
			wantErr: true,
		},
		{
			name:    "negative cost rejected",
			in:      "1 2 -5\n",
			wantErr: true,
		},
		{
			name:    "negative id rejected",
			in:      "-1 2 5\n",
			wantErr: true,
		},
		{
			name:    "id above ceiling rejected",
			in:      "1 101 5\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTopology(strings.NewReader(tt.in))
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTopology() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTopology() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdge_String(t *testing.T) {
	e := Edge{U: 1, V: 2, Cost: 5}
	if got := e.String(); got != "1 2 5" {
		t.Errorf("String() = %v, want %v", got, "1 2 5")
	}
}
