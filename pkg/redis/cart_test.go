package redis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// serverError mimics an error reply from the redis server, which is
// what go-redis hands back for RENAMENX on an absent key.
type serverError string

func (e serverError) Error() string { return string(e) }
func (e serverError) RedisError()   {}

func TestIsMissingKey(t *testing.T) {
	assert.True(t, isMissingKey(serverError("ERR no such key")))
	assert.True(t, isMissingKey(fmt.Errorf("renamenx: %w", serverError("ERR no such key"))))

	assert.False(t, isMissingKey(serverError("ERR wrong number of arguments")))
	// a plain error with the same text is not a server reply
	assert.False(t, isMissingKey(errors.New("ERR no such key")))
	assert.False(t, isMissingKey(nil))
}
