package reporter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/rayscan/internal/search"
	"github.com/pthm/rayscan/internal/ui"
)

func newPlainReporter(buf *bytes.Buffer, opts Options) *TerminalReporter {
	return NewTerminalReporter(buf, ui.NewPlain(buf, io.Discard), opts)
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestTerminalReporter_NoResults(t *testing.T) {
	for _, opts := range []Options{{}, {ShowSummary: true}, {CompactMode: true}, {ShowSummary: true, CompactMode: true}} {
		var buf bytes.Buffer
		require.NoError(t, newPlainReporter(&buf, opts).Report(context.Background(), nil))
		assert.Equal(t, "scan complete.\nNo references to ray were found.\n", buf.String())
	}
}

func TestTerminalReporter_SingleFileListing(t *testing.T) {
	var buf bytes.Buffer
	r := newPlainReporter(&buf, Options{BasePath: "/repo"})

	groups := []search.FileResults{group("/repo/app.php", "ray", "ray")}
	require.NoError(t, r.Report(context.Background(), groups))

	assert.Equal(t, []string{
		"scan complete.",
		"",
		"  ./app.php:3  ray($x);",
		"  ./app.php:4  ray($x);",
		"Found 2 references in 1 files.",
	}, lines(buf.String()))
}

func TestTerminalReporter_SummaryCompact(t *testing.T) {
	var buf bytes.Buffer
	r := newPlainReporter(&buf, Options{ShowSummary: true, CompactMode: true, BasePath: "/repo"})

	groups := []search.FileResults{
		group("/repo/src/Zeta.php", "ray", "ray", "rd"),
		group("/repo/src/Alpha.php", "ray", "->ray"),
		group("/elsewhere/Mid.php", "Ray::clearAll", "ray"),
	}
	require.NoError(t, r.Report(context.Background(), groups))

	out := lines(buf.String())
	require.Len(t, out, 2+7+3)

	assert.Equal(t, "scan complete.", out[0])
	assert.Equal(t, "", out[1])

	tableLines := out[2:9]
	for _, l := range tableLines {
		assert.True(t, strings.HasPrefix(l, "+") || strings.HasPrefix(l, "|"), "table line %q", l)
	}
	assert.Contains(t, tableLines[1], "Filename")
	assert.Contains(t, tableLines[1], "Call Count")
	assert.Regexp(t, `^\| \./src/Zeta\.php\s+\|\s+3 \|$`, tableLines[3])
	assert.Regexp(t, `^\| \./src/Alpha\.php\s+\|\s+2 \|$`, tableLines[4])
	assert.Regexp(t, `^\| /elsewhere/Mid\.php\s+\|\s+2 \|$`, tableLines[5])

	assert.Equal(t, []string{"", "", "Found 7 references in 3 files."}, out[9:])
	assert.NotContains(t, buf.String(), "ray($x);", "listing must be suppressed in summary mode")
}

func TestTerminalReporter_SummaryWithoutCompact(t *testing.T) {
	var buf bytes.Buffer
	r := newPlainReporter(&buf, Options{ShowSummary: true})

	require.NoError(t, r.Report(context.Background(), []search.FileResults{group("/repo/a.php", "ray")}))

	out := lines(buf.String())
	assert.Equal(t, []string{"", "Found 1 references in 1 files."}, out[len(out)-2:])
	assert.NotEqual(t, "", out[len(out)-3])
}

func TestTerminalReporter_CompactWithoutSummary(t *testing.T) {
	var buf bytes.Buffer
	r := newPlainReporter(&buf, Options{CompactMode: true, BasePath: "/repo"})

	require.NoError(t, r.Report(context.Background(), []search.FileResults{group("/repo/a.php", "ray")}))

	assert.Equal(t, []string{
		"scan complete.",
		"",
		"  ./a.php:3  ray($x);",
		"",
		"Found 1 references in 1 files.",
	}, lines(buf.String()))
}

func TestTerminalReporter_CustomTarget(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPlainReporter(&buf, Options{Target: "dump"}).Report(context.Background(), nil))
	assert.Contains(t, buf.String(), "No references to dump were found.")
}

type recordingPrinter struct {
	calls []string
}

func (p *recordingPrinter) Print(w io.Writer, m search.Match) error {
	p.calls = append(p.calls, m.String())
	_, err := io.WriteString(w, "match\n")
	return err
}

func TestTerminalReporter_InjectedPrinterOrder(t *testing.T) {
	var buf bytes.Buffer
	printer := &recordingPrinter{}
	r := newPlainReporter(&buf, Options{Printer: printer})

	groups := []search.FileResults{
		group("/b.php", "ray", "rd"),
		group("/a.php", "ray"),
	}
	require.NoError(t, r.Report(context.Background(), groups))

	assert.Equal(t, []string{
		"/b.php:3:1 ray",
		"/b.php:4:1 rd",
		"/a.php:3:1 ray",
	}, printer.calls)
	assert.Equal(t, 3, strings.Count(buf.String(), "match\n"))
}

func TestTerminalReporter_SummarySkipsPrinter(t *testing.T) {
	var buf bytes.Buffer
	printer := &recordingPrinter{}
	r := newPlainReporter(&buf, Options{ShowSummary: true, Printer: printer})

	require.NoError(t, r.Report(context.Background(), []search.FileResults{group("/a.php", "ray", "ray")}))
	assert.Empty(t, printer.calls)
}

func TestTerminalReporter_StyledOutput(t *testing.T) {
	var buf bytes.Buffer
	u := &ui.UI{Mode: ui.OutputModeInteractive, Writer: &buf, ErrWriter: io.Discard, Styles: ui.NewStyles(true)}
	r := NewTerminalReporter(&buf, u, Options{})

	require.NoError(t, r.Report(context.Background(), nil))
	out := lines(buf.String())
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "❱")
	assert.Contains(t, out[0], "scan complete.")
	assert.Contains(t, out[1], "✔")
	assert.Contains(t, out[1], "No references to ray were found.")
}

var errSinkClosed = errors.New("sink closed")

type failingWriter struct {
	remaining int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.remaining == 0 {
		return 0, errSinkClosed
	}
	w.remaining--
	return len(p), nil
}

func TestTerminalReporter_WriteFailure(t *testing.T) {
	groups := []search.FileResults{group("/a.php", "ray", "ray")}

	for _, after := range []int{0, 1, 2, 4} {
		w := &failingWriter{remaining: after}
		r := NewTerminalReporter(w, ui.NewPlain(w, io.Discard), Options{})
		assert.ErrorIs(t, r.Report(context.Background(), groups), errSinkClosed, "fail after %d writes", after)
	}
}

func TestTerminalReporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := newPlainReporter(&buf, Options{}).Report(ctx, []search.FileResults{group("/a.php", "ray")})
	assert.ErrorIs(t, err, context.Canceled)
}
