package logrus

import (
	"fmt"
	"sync/atomic"

	logrus "github.com/sirupsen/logrus"

	"github.com/go-mountfs/mountfs/log"
)

// DefaultLevels is the logrus level assigned to each
// topic when Logrus.Levels has no entry for it.
var DefaultLevels = map[log.Topics]logrus.Level{
	log.TopicCall:    logrus.DebugLevel,
	log.TopicVerdict: logrus.DebugLevel,
	log.TopicTrace:   logrus.InfoLevel,
	log.TopicError:   logrus.WarnLevel,
}

type Logrus struct {
	Logger  *logrus.Logger
	Enable  log.Topics
	Levels  map[log.Topics]logrus.Level
	counter uint64
}

func (l *Logrus) Enabled(topics log.Topics) bool {
	return (l.Enable & topics) != 0
}

// level picks the most severe level among the enabled
// topics.
func (l *Logrus) level(topics log.Topics) logrus.Level {
	result := logrus.TraceLevel
	for topic, fallback := range DefaultLevels {
		if topics&topic == 0 || l.Enable&topic == 0 {
			continue
		}
		level, ok := l.Levels[topic]
		if !ok {
			level = fallback
		}
		if level < result {
			result = level
		}
	}
	return result
}

func logHandleDebugStruct(l *logrus.Entry, level logrus.Level, fields log.M, msg string) {
	smallFields := make(log.M)
	for name, field := range fields {
		if ds, ok := field.(log.DebugStruct); ok {
			if m := ds.Fields(); m != nil {
				for fieldName, value := range m {
					smallFields[name+"."+fieldName] = value
				}
				continue
			}
		}
		smallFields[name] = field
	}
	l.WithFields(smallFields).Log(level, msg)
}

func (l *Logrus) Call(name string, args log.M) string {
	if !l.Enabled(log.TopicCall) {
		return ""
	}
	cookie := fmt.Sprintf("%x", atomic.AddUint64(&l.counter, 1))
	logHandleDebugStruct(l.Logger.WithFields(logrus.Fields{
		"name":   name,
		"cookie": cookie,
	}), l.level(log.TopicCall), args, "call")
	return cookie
}

func (l *Logrus) Log(topics log.Topics, msg string) {
	if !l.Enabled(topics) {
		return
	}
	l.Logger.WithField("topic", (topics & l.Enable).String()).
		Log(l.level(topics), msg)
}

func (l *Logrus) Logf(topics log.Topics, msg string, args ...any) {
	if !l.Enabled(topics) {
		return
	}
	l.Logger.WithField("topic", (topics & l.Enable).String()).
		Logf(l.level(topics), msg, args...)
}

func (l *Logrus) Return(name, cookie string, rets log.M) {
	if !l.Enabled(log.TopicCall) {
		return
	}
	logHandleDebugStruct(l.Logger.WithFields(logrus.Fields{
		"name":   name,
		"cookie": cookie,
	}), l.level(log.TopicCall), rets, "return")
}

var _ log.Log = (*Logrus)(nil)

func Default() *Logrus {
	return &Logrus{
		Logger: logrus.New(),
		Enable: log.AllTopics,
	}
}
