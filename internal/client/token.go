package client

import "encoding/json"

// TokenShape is one of the login response layouts the backend has been seen
// to produce. They should converge on one upstream; until then all are accepted.
type TokenShape int

const (
	ShapeNone TokenShape = iota
	// {"status":"success","data":{"token":T}}
	ShapeSuccessData
	// {"data":{"token":T}}
	ShapeData
	// {"token":T}
	ShapeRoot
	// {"data":{"data":{"token":T}}}
	ShapeNestedData
)

func (s TokenShape) String() string {
	switch s {
	case ShapeSuccessData:
		return "success.data.token"
	case ShapeData:
		return "data.token"
	case ShapeRoot:
		return "token"
	case ShapeNestedData:
		return "data.data.token"
	default:
		return "none"
	}
}

type tokenEnvelope struct {
	Status json.RawMessage `json:"status"`
	Token  json.RawMessage `json:"token"`
	Data   json.RawMessage `json:"data"`
}

func (t tokenEnvelope) data() (tokenEnvelope, bool) {
	var inner tokenEnvelope
	if len(t.Data) == 0 || json.Unmarshal(t.Data, &inner) != nil {
		return tokenEnvelope{}, false
	}
	return inner, true
}

// ExtractToken finds the session token in a login response body, checking
// the accepted shapes in order of preference.
func ExtractToken(raw []byte) (string, TokenShape) {
	var root tokenEnvelope
	if err := json.Unmarshal(raw, &root); err != nil {
		return "", ShapeNone
	}
	data, hasData := root.data()

	if hasData {
		if tok := asString(data.Token); tok != "" {
			if asString(root.Status) == "success" {
				return tok, ShapeSuccessData
			}
			return tok, ShapeData
		}
	}
	if tok := asString(root.Token); tok != "" {
		return tok, ShapeRoot
	}
	if hasData {
		if nested, ok := data.data(); ok {
			if tok := asString(nested.Token); tok != "" {
				return tok, ShapeNestedData
			}
		}
	}
	return "", ShapeNone
}

func asString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
