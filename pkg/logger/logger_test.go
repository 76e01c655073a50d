package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONWithService(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer

	log := Init(Options{Level: "info", Service: "event-planner", Output: &buf})
	log.Info().Str("user_id", "u1").Msg("hello")
	log.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "event-planner", entry["service"])
	require.Equal(t, "hello", entry["message"])
	require.Equal(t, "u1", entry["user_id"])
	require.NotContains(t, buf.String(), "hidden")
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	t.Cleanup(Reset)
	var first, second bytes.Buffer

	Init(Options{Output: &first})
	Init(Options{Output: &second})
	l := Get()
	l.Info().Msg("once")

	require.Contains(t, first.String(), "once")
	require.Zero(t, second.Len())
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	require.Panics(t, func() { Get() })
}

func TestComponent_TagsEntries(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer
	Init(Options{Service: "event-planner", Output: &buf})

	l := Component("mongo")
	l.Info().Msg("connected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "mongo", entry["component"])
	require.Equal(t, "event-planner", entry["service"])
}

func TestInit_CallerOnlyAtDebug(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer
	l := Init(Options{Level: "info", Output: &buf})
	l.Info().Msg("x")
	require.NotContains(t, buf.String(), `"caller"`)

	Reset()
	buf.Reset()
	l = Init(Options{Level: "debug", Output: &buf})
	l.Info().Msg("x")
	require.Contains(t, buf.String(), `"caller"`)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLevel(in), "level %q", in)
	}
}
