package diag

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_AddAndWarn(t *testing.T) {
	var l List
	l.Add(StructuralError, Range{Start: 3, End: 9}, "unsupported directive #%s", "if")
	l.Warn(LexError, Range{Start: 10, End: 12}, "extra tokens")

	require.Len(t, l, 2)
	assert.Equal(t, SeverityError, l[0].Severity)
	assert.Equal(t, "unsupported directive #if", l[0].Message)
	assert.Equal(t, SeverityWarning, l[1].Severity)
	assert.True(t, l.HasErrors())
	assert.Equal(t, 1, l.Count(LexError))
	assert.Equal(t, 0, l.Count(ResolutionError))
}

func TestList_WarningsOnlyHaveNoErr(t *testing.T) {
	var l List
	l.Warn(StructuralError, Range{}, "redefined")
	assert.False(t, l.HasErrors())
	assert.NoError(t, l.Err())
}

func TestList_ErrJoinsErrors(t *testing.T) {
	var l List
	l.Add(ResolutionError, Range{Start: 0, End: 4}, "cannot resolve")
	l.Warn(StructuralError, Range{}, "ignored")

	err := l.Err()
	require.Error(t, err)
	var d Diagnostic
	require.True(t, errors.As(err, &d))
	assert.Equal(t, ResolutionError, d.Kind)
	assert.Equal(t, "0-4: resolution error: cannot resolve", err.Error())
}

func TestList_AppendStampsUnit(t *testing.T) {
	var inner List
	inner.Add(LexError, Range{Start: 1, End: 2}, "a")
	inner = append(inner, Diagnostic{Kind: LexError, Unit: "other.dtsi", Message: "b"})

	var l List
	l.Append("board.dts", inner)
	assert.Equal(t, "board.dts", l[0].Unit)
	assert.Equal(t, "other.dtsi", l[1].Unit)
}

func TestList_ShiftAndSort(t *testing.T) {
	l := List{
		{Unit: "b", Range: Range{Start: 5, End: 6}, Message: "b5"},
		{Unit: "a", Range: Range{Start: 7, End: 8}, Message: "a7"},
		{Unit: "a", Range: Range{Start: 2, End: 3}, Message: "a2"},
	}
	l.Shift(10)
	assert.Equal(t, Range{Start: 15, End: 16}, l[0].Range)

	l.Sort()
	var got []string
	for _, d := range l {
		got = append(got, d.Message)
	}
	assert.Equal(t, []string{"a2", "a7", "b5"}, got)
}

func TestRange(t *testing.T) {
	r := Range{Start: 4, End: 8}
	assert.Equal(t, 4, r.Len())
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(8))
	assert.Equal(t, "4-8", r.String())
}

func TestLines_Position(t *testing.T) {
	src := "/dts-v1/;\n#include \"a.dtsi\"\n"
	lines := NewLines("board.dts", src)

	pos := lines.Position(10)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 1, pos.Column)
	assert.Equal(t, 1, lines.Line(0))

	// past the end clamps instead of panicking
	assert.Equal(t, len(src), lines.Position(len(src)+50).Offset)
	assert.Equal(t, "board.dts:2:10", lines.Position(19).String())
}

func TestLogger_NilIsSilent(t *testing.T) {
	var l Logger
	assert.NotPanics(t, func() { l.Log(slog.LevelInfo, "nothing") })
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	l.With("include").Log(slog.LevelDebug, "resolved", slog.String("path", "a.dtsi"))

	out := buf.String()
	assert.Contains(t, out, "component=include")
	assert.Contains(t, out, "path=a.dtsi")
}
