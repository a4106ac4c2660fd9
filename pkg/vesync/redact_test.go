package vesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	in := `{"email":"user@example.com","password":"5f4dcc3b","method":"login"}`
	got := redact(in)
	assert.NotContains(t, got, "user@example.com")
	assert.NotContains(t, got, "5f4dcc3b")
	assert.Contains(t, got, `"email":"##_REDACTED_##"`)
	assert.Contains(t, got, `"method":"login"`)
}

func TestRedactSessionFields(t *testing.T) {
	in := `{"tk":"abc123","accountId":"42","uuid":"u-1","cid":"c-1","deviceStatus":"on"}`
	got := redact(in)
	assert.NotContains(t, got, "abc123")
	assert.NotContains(t, got, "u-1")
	assert.NotContains(t, got, "c-1")
	assert.Contains(t, got, `"deviceStatus":"on"`)
}

func TestRedactIfEnabled(t *testing.T) {
	c := New("user@example.com", "password", testLogger())
	payload := []byte(`{"token":"secret"}`)

	assert.NotContains(t, c.redactIfEnabled(payload), "secret")

	c.SetRedact(false)
	assert.Contains(t, c.redactIfEnabled(payload), "secret")
}
