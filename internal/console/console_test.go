package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := New(&out, &errOut)
	p.DisableColor()
	return p, &out, &errOut
}

func TestPrinterStreams(t *testing.T) {
	p, out, errOut := newTestPrinter()

	p.Info("scanning %d directories", 2)
	p.Success("done")
	p.Warning("cache is stale")
	p.Error("plugin %s failed", "hosting")

	if got, want := out.String(), "scanning 2 directories\ndone\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if got, want := errOut.String(), "cache is stale\nplugin hosting failed\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestPrinterQuiet(t *testing.T) {
	p, out, errOut := newTestPrinter()
	p.SetQuiet(true)

	p.Info("hidden")
	p.Success("hidden")
	p.Line("hidden")
	p.Table(NewTable("A"))
	p.Error("shown")

	if out.Len() != 0 {
		t.Errorf("quiet printer wrote to stdout: %q", out.String())
	}
	if errOut.String() != "shown\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable("Name", "Version", "Type")
	table.AddRow("storage", "1.0.0", "category")
	table.AddRow("awscloud", "0.3.0")

	want := strings.Join([]string{
		"Name      Version  Type",
		"--------  -------  --------",
		"storage   1.0.0    category",
		"awscloud  0.3.0    ",
		"",
	}, "\n")

	if diff := cmp.Diff(want, table.Render()); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestTableWrapColumn(t *testing.T) {
	table := NewTable("Type", "Description")
	table.WrapColumn(1, 12)
	table.AddRow("util", "general purpose helpers")

	want := strings.Join([]string{
		"Type  Description",
		"----  -----------",
		"util  general",
		"      purpose",
		"      helpers",
		"",
	}, "\n")

	if diff := cmp.Diff(want, table.Render()); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestTableEmpty(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"no limit at all", 0, []string{"no limit at all"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, wrapText(tt.text, tt.width)); diff != "" {
				t.Errorf("wrapText() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
