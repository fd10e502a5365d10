package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTopics(t *testing.T) {
	assert := assert.New(t)

	topics, err := ParseTopics("verdict, Trace")
	assert.NoError(err)
	assert.Equal(TopicVerdict|TopicTrace, topics)
	assert.Equal("verdict|trace", topics.String())

	topics, err = ParseTopics("all")
	assert.NoError(err)
	assert.Equal(AllTopics, topics)

	topics, err = ParseTopics("")
	assert.NoError(err)
	assert.Equal(Topics(0), topics)

	_, err = ParseTopics("call,bogus")
	assert.Error(err)
}

type fieldsOf map[string]any

func (f fieldsOf) Fields() map[string]any { return f }

func TestJoinDebugStructFields(t *testing.T) {
	assert.Equal(t, "a: 1, b: x", JoinDebugStructFields(fieldsOf{"b": "x", "a": 1}))
	assert.Equal(t, "", JoinDebugStructFields(fieldsOf(nil)))
}
