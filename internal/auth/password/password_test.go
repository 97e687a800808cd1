package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	assert.True(t, Verify("s3cret-pass", hash))
	assert.False(t, Verify("wrong-pass", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same-password")
	assert.NoError(t, err)
	second, err := Hash("same-password")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.True(t, Verify("same-password", first))
	assert.True(t, Verify("same-password", second))
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	assert.False(t, Verify("whatever", ""))
	assert.False(t, Verify("whatever", "$argon2id$v=19$m=65536,t=1,p=4$notbase64!$zzz"))
	assert.False(t, Verify("whatever", "$bcrypt$garbage"))
}
