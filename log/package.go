// Package log defines the logging interface for mountfs.
//
// Given that there're many go logging frameworks out there,
// we can't make the choice. So we require user to adapt
// the logger they choose into our logging interface. The
// logrus and zaplog subpackages do so for two of them.
//
// On the other hand, we can define a more semantic logging
// interface to specify what topic we are about to log, so
// that user gains more control in processing and filtering
// logs by topics.
package log

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Topics specify the masks of the logger topic.
//
// The logger will query and see if the current logging
// topic has been enabled, so that it won't spend time on
// generating log calls that is not required.
type Topics int

const (
	// TopicCall records the calling arguments and result
	// of a routed operation.
	//
	// This affects `Log.Call` and `Log.Return` interface.
	// They won't be called if TopicCall is not enabled.
	TopicCall Topics = 1 << iota

	// TopicVerdict records the routing choices, that is,
	// which mounted file system serves a path.
	//
	// This affects `Log.Log` and `Log.Logf` when the
	// topics contain TopicVerdict.
	TopicVerdict

	// TopicTrace records redirections of an operation
	// after a file system reported the target outside
	// of its tree.
	//
	// This affects `Log.Log` and `Log.Logf` when the
	// topics contain TopicTrace.
	TopicTrace

	// TopicError records the errors that are remediated
	// inside the router instead of being returned.
	//
	// This affects `Log.Log` and `Log.Logf` when the
	// topics contain TopicError.
	TopicError
)

const (
	AllTopics = Topics(0) |
		TopicCall |
		TopicVerdict |
		TopicTrace |
		TopicError
)

var topicNames = []struct {
	topic Topics
	name  string
}{
	{TopicCall, "call"},
	{TopicVerdict, "verdict"},
	{TopicTrace, "trace"},
	{TopicError, "error"},
}

func (t Topics) String() string {
	var names []string
	for _, tn := range topicNames {
		if t&tn.topic != 0 {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseTopics parses a comma separated list of topic names,
// such as "verdict,trace". The name "all" enables every
// topic.
func ParseTopics(s string) (Topics, error) {
	var result Topics
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		if name == "all" {
			result |= AllTopics
			continue
		}
		found := false
		for _, tn := range topicNames {
			if tn.name == name {
				result |= tn.topic
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Errorf("unknown log topic %q", name)
		}
	}
	return result, nil
}

// M is the shorthand for `map[string]any`.
type M = map[string]any

// DebugStruct is the interface to signify that a logged
// value has internal fields, which can be serialized by
// the .Fields method.
//
// Please notice that the .Fields method can return nil,
// and the caller must handle that.
type DebugStruct interface {
	Fields() map[string]any
}

// JoinDebugStructFields with comma, in key order.
func JoinDebugStructFields(s DebugStruct) string {
	m := s.Fields()
	if m == nil {
		return ""
	}
	var fields []string
	for key, value := range m {
		fields = append(fields, fmt.Sprintf("%s: %v", key, value))
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}

// Log is the logger interface.
type Log interface {
	// Check if any of the topic is enabled.
	Enabled(Topics) bool

	// Call records the calling arguments of a function.
	//
	// The function will need to generate a cookie for call,
	// so that it can be to associate the result.
	Call(name string, args M) string

	// Return records the calling result of a function.
	//
	// The previously generated cookie for call will be used.
	Return(name, cookie string, rets M)

	// Log with the specified topics.
	Log(topics Topics, msg string)

	// Logf with the specified topics.
	Logf(topics Topics, msg string, args ...any)
}

// NoLog is the null implementation of the Log.
type NoLog struct{}

func (NoLog) Enabled(Topics) bool                         { return false }
func (NoLog) Call(string, M) string                       { return "" }
func (NoLog) Log(topics Topics, msg string)               {}
func (NoLog) Logf(topics Topics, msg string, args ...any) {}
func (NoLog) Return(name, cookie string, rets M)          {}

var _ Log = (*NoLog)(nil)
