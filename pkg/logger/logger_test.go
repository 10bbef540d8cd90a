package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	New(Config{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	New(Config{Level: "bogus"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel(), "unknown levels fall back to info")

	New(Config{})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestForComponentTagsLines(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	cl := ForComponent(l, "scheduler")
	cl.Info().Msg("tick")

	assert.Contains(t, buf.String(), `"component":"scheduler"`)
	assert.Contains(t, buf.String(), `"message":"tick"`)
}
