package main

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_encodeTable(t *testing.T) {
	tests := []struct {
		name    string
		table   RoutingTable
		want    string
		wantErr bool
	}{
		{
			name:  "empty",
			table: RoutingTable{},
			want:  "",
		},
		{
			name: "single entry",
			table: RoutingTable{
				1: {Cost: 0, NextHop: 1},
			},
			want: "1,0,1;",
		},
		{
			name: "ascending destinations",
			table: RoutingTable{
				3: {Cost: 2, NextHop: 2},
				1: {Cost: 0, NextHop: 1},
				2: {Cost: 1, NextHop: 2},
			},
			want: "1,0,1;2,1,2;3,2,2;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeTable(tt.table)
			if (err != nil) != tt.wantErr {
				t.Errorf("encodeTable() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if string(got) != tt.want {
				t.Errorf("encodeTable() = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_encodeTable_budget(t *testing.T) {
	table := make(RoutingTable)
	for id := NodeID(0); id < 100; id++ {
		table[id] = RoutingEntry{Cost: maxCost, NextHop: id}
	}

	_, err := encodeTable(table)
	assert.Error(t, err)
}

func Test_decodeTable(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		want     RoutingTable
		wantErrs int
	}{
		{
			name: "empty payload",
			data: "",
			want: RoutingTable{},
		},
		{
			name: "single entry",
			data: "2,5,2;",
			want: RoutingTable{
				2: {Cost: 5, NextHop: 2},
			},
		},
		{
			name: "no trailing separator",
			data: "1,0,1;2,5,2",
			want: RoutingTable{
				1: {Cost: 0, NextHop: 1},
				2: {Cost: 5, NextHop: 2},
			},
		},
		{
			name: "malformed integer skipped",
			data: "1,x,1;2,5,2;",
			want: RoutingTable{
				2: {Cost: 5, NextHop: 2},
			},
			wantErrs: 1,
		},
		{
			name: "truncated entry skipped",
			data: "1,0;2,5,2;",
			want: RoutingTable{
				2: {Cost: 5, NextHop: 2},
			},
			wantErrs: 1,
		},
		{
			name:     "negative cost skipped",
			data:     "2,-5,2;",
			want:     RoutingTable{},
			wantErrs: 1,
		},
		{
			name:     "negative identifier skipped",
			data:     "-2,5,2;",
			want:     RoutingTable{},
			wantErrs: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := decodeTable([]byte(tt.data))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeTable() got = %v, want %v", got, tt.want)
			}
			if len(errs) != tt.wantErrs {
				t.Errorf("decodeTable() errs = %v, want %d", errs, tt.wantErrs)
			}
		})
	}
}

func Test_decodeTable_overBudget(t *testing.T) {
	data := strings.Repeat("1,2,3;", payloadBudget)

	got, errs := decodeTable([]byte(data))
	assert.Empty(t, got)
	assert.Len(t, errs, 1)
}

func TestMsgKind_String(t *testing.T) {
	kinds := map[MsgKind]string{
		Init:        "INIT",
		Wake:        "WAKE",
		Update:      "UPDATE",
		Terminate:   "TERMINATE",
		Refresh:     "REFRESH",
		MsgKind(42): "UNKNOWN(42)",
	}
	for kind, want := range kinds {
		assert.Equal(t, want, kind.String())
	}
}
