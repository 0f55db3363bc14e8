package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/JonMunkholm/zander/internal/core"
	"github.com/google/go-cmp/cmp"
)

func TestRowStatus(t *testing.T) {
	tests := []struct {
		name string
		in   core.ValidationResult
		want string
	}{
		{"clean", core.ValidationResult{}, "OK"},
		{"warning", core.ValidationResult{Warnings: []string{"w"}}, "WARNING"},
		{"error wins over warning", core.ValidationResult{Errors: []string{"e"}, Warnings: []string{"w"}}, "ERROR"},
		{"duplicate is orthogonal", core.ValidationResult{Errors: []string{"e"}, IsDuplicate: true}, "ERROR,DUPLICATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rowStatus(tt.in); got != tt.want {
				t.Errorf("rowStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	writeResult(&buf, &core.ImportResult{
		Imported: 1, Skipped: 1, Errors: 1,
		Details: []core.ImportDetail{
			{Row: 2, Name: "A", Status: core.StatusImported},
			{Row: 3, Name: "B", Status: core.StatusSkipped, Message: "Product with SKU 'B-1' already exists"},
			{Row: 4, Name: "C", Status: core.StatusError, Message: "Name is required"},
		},
	})

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"imported 1, updated 0, skipped 1, errors 1",
		"  row 3 B: skipped Product with SKU 'B-1' already exists",
		"  row 4 C: error Name is required",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("writeResult mismatch (-want +got):\n%s", diff)
	}
}
