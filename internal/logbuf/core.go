package logbuf

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

type core struct {
	zapcore.LevelEnabler
	buf    *Buffer
	fields []zapcore.Field
}

// Core returns a zap core that appends every enabled entry to b.
func (b *Buffer) Core(level zapcore.LevelEnabler) zapcore.Core {
	return &core{LevelEnabler: level, buf: b}
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := &core{LevelEnabler: c.LevelEnabler, buf: c.buf}
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	c.buf.Append(Entry{
		Time:    ent.Time,
		Level:   ent.Level.CapitalString(),
		Message: ent.Message,
		Fields:  formatFields(c.fields, fields),
	})
	return nil
}

func (c *core) Sync() error { return nil }

func formatFields(groups ...[]zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, group := range groups {
		for _, f := range group {
			f.AddTo(enc)
		}
	}
	if len(enc.Fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, enc.Fields[k]))
	}
	return strings.Join(parts, " ")
}
