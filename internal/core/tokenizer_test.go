package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenizeLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `"Widget, large",SKU-1`, []string{"Widget, large", "SKU-1"}},
		{"quotes are not copied", `"abc"`, []string{"abc"}},
		{"quote mid field", `ab"c,d"e`, []string{"abc,de"}},
		{"unbalanced quote swallows rest", `"abc,def`, []string{"abc,def"}},
		{"empty fields", ",,", []string{"", "", ""}},
		{"whitespace kept", " a , b ", []string{" a ", " b "}},
		{"empty line", "", []string{""}},
		{"doubled quote toggles twice", `say ""hi""`, []string{"say hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenizeLine(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TokenizeLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{
			name: "header and one row",
			text: "name,sku\nWidget,W-1\n",
			want: [][]string{{"name", "sku"}, {"Widget", "W-1"}},
		},
		{
			name: "blank lines discarded",
			text: "\nname,sku\n   \n\nWidget,W-1\n\n",
			want: [][]string{{"name", "sku"}, {"Widget", "W-1"}},
		},
		{
			name: "crlf line endings",
			text: "name,sku\r\nWidget,W-1\r\n",
			want: [][]string{{"name", "sku"}, {"Widget", "W-1"}},
		},
		{
			name: "header only",
			text: "name,sku\n",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: " \n\t\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizeLines(t *testing.T) {
	records, lines := TokenizeLines("\nname,sku\r\n  \nWidget,W-1\r\n\nGadget,G-1")
	want := [][]string{{"name", "sku"}, {"Widget", "W-1"}, {"Gadget", "G-1"}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 4, 6}, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	records, lines = TokenizeLines("name,sku\n\n")
	if records != nil || lines != nil {
		t.Errorf("header only = %v, %v, want nil", records, lines)
	}
}
