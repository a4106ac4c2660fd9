package vesync

import "regexp"

// Debug logging of API traffic would otherwise leak session tokens and
// account identifiers, so values of these JSON fields are masked before the
// payload reaches the logger.
var redactPattern = regexp.MustCompile(
	`(?i)((?:"token"|"password"|"email"|"tk"|"accountId"|"accountID"|"authKey"|"uuid"|"cid")\s*:\s*")[^"]*(")`,
)

const redactedValue = "##_REDACTED_##"

// redact masks sensitive field values in a JSON payload string.
func redact(payload string) string {
	return redactPattern.ReplaceAllString(payload, "${1}"+redactedValue+"${2}")
}

// redactIfEnabled applies redaction according to the client setting.
func (c *Client) redactIfEnabled(payload []byte) string {
	if c.redact {
		return redact(string(payload))
	}
	return string(payload)
}
