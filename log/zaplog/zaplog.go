// Package zaplog adapts a zap logger into log.Log.
package zaplog

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-mountfs/mountfs/log"
)

type Zap struct {
	Logger  *zap.Logger
	Enable  log.Topics
	counter uint64
}

func New(logger *zap.Logger, enable log.Topics) *Zap {
	return &Zap{Logger: logger, Enable: enable}
}

func (z *Zap) Enabled(topics log.Topics) bool {
	return (z.Enable & topics) != 0
}

func (z *Zap) level(topics log.Topics) zapcore.Level {
	if topics&log.TopicError != 0 {
		return zapcore.WarnLevel
	}
	if topics&log.TopicTrace != 0 {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

func fieldsOf(m log.M) []zap.Field {
	fields := make([]zap.Field, 0, len(m))
	for name, value := range m {
		if ds, ok := value.(log.DebugStruct); ok {
			if inner := ds.Fields(); inner != nil {
				fields = append(fields, zap.Any(name, inner))
				continue
			}
		}
		if err, ok := value.(error); ok {
			fields = append(fields, zap.NamedError(name, err))
			continue
		}
		fields = append(fields, zap.Any(name, value))
	}
	return fields
}

func (z *Zap) Call(name string, args log.M) string {
	if !z.Enabled(log.TopicCall) {
		return ""
	}
	cookie := strconv.FormatUint(atomic.AddUint64(&z.counter, 1), 16)
	fields := append([]zap.Field{
		zap.String("name", name),
		zap.String("cookie", cookie),
	}, fieldsOf(args)...)
	z.Logger.Debug("call", fields...)
	return cookie
}

func (z *Zap) Return(name, cookie string, rets log.M) {
	if !z.Enabled(log.TopicCall) {
		return
	}
	fields := append([]zap.Field{
		zap.String("name", name),
		zap.String("cookie", cookie),
	}, fieldsOf(rets)...)
	z.Logger.Debug("return", fields...)
}

func (z *Zap) Log(topics log.Topics, msg string) {
	if !z.Enabled(topics) {
		return
	}
	z.Logger.Log(z.level(topics&z.Enable), msg,
		zap.Stringer("topic", topics&z.Enable))
}

func (z *Zap) Logf(topics log.Topics, msg string, args ...any) {
	if !z.Enabled(topics) {
		return
	}
	z.Logger.Log(z.level(topics&z.Enable), fmt.Sprintf(msg, args...),
		zap.Stringer("topic", topics&z.Enable))
}

var _ log.Log = (*Zap)(nil)
