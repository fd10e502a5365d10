package zaplog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/go-mountfs/mountfs/log"
)

func TestZapTopics(t *testing.T) {
	assert := assert.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	z := New(zap.New(core), log.TopicCall|log.TopicError)

	cookie := z.Call("Stat", log.M{"path": "/a"})
	assert.Equal("1", cookie)
	z.Return("Stat", cookie, log.M{"err": errors.New("boom")})
	z.Logf(log.TopicError, "dropped %s", "completion")
	z.Log(log.TopicTrace, "not enabled")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal("call", entries[0].Message)
	assert.Equal("/a", entries[0].ContextMap()["path"])
	assert.Equal("return", entries[1].Message)
	assert.Equal("boom", entries[1].ContextMap()["err"])
	assert.Equal(zapcore.WarnLevel, entries[2].Level)
	assert.Equal("dropped completion", entries[2].Message)
	assert.Equal("error", entries[2].ContextMap()["topic"])
}

type fileFields struct{ name string }

func (f fileFields) Fields() map[string]any {
	return map[string]any{"name": f.name}
}

func TestZapDebugStruct(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	z := New(zap.New(core), log.AllTopics)
	z.Call("Open", log.M{"file": fileFields{name: "/a"}})

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"name": "/a"},
		entries[0].ContextMap()["file"])
}
