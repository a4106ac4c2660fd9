package vesync

import "encoding/json"

// responseEnvelope is the outer shape shared by most cloud API responses.
// Legacy v1 endpoints omit the code field entirely, which decodes as 0.
type responseEnvelope struct {
	Code   int64           `json:"code"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

// CodeCheck reports whether a decoded response body signals success, i.e. it
// is a JSON object whose top-level code field is 0 or absent.
func CodeCheck(body json.RawMessage) bool {
	if len(body) == 0 {
		return false
	}
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	return env.Code == 0
}

// decodeMap decodes a raw response body into a generic map for endpoints
// whose result shape varies by device family.
func decodeMap(body json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// NestedCodeCheck reports whether every code field in the response is 0,
// recursing through nested objects. Responses of managed-device calls bury
// per-operation codes inside the result object.
func NestedCodeCheck(response map[string]any) bool {
	for key, value := range response {
		switch v := value.(type) {
		case float64:
			if key == "code" && v != 0 {
				return false
			}
		case json.Number:
			if key == "code" && v.String() != "0" {
				return false
			}
		case map[string]any:
			if !NestedCodeCheck(v) {
				return false
			}
		}
	}
	return true
}
