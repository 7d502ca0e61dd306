package client

import (
	"encoding/json"
	"fmt"

	"social_gateway/internal/models"
)

// Describe renders an envelope the way the diagnostic pages print it:
//
//	<label>Status: 409 Conflict
//
//	Response:
//	{ ...indented body... }
func Describe(label string, env *models.Envelope) string {
	if env == nil {
		return label + "no response"
	}
	body, err := json.MarshalIndent(env.Body, "", "  ")
	if err != nil {
		body = env.Raw
	}
	return fmt.Sprintf("%sStatus: %d %s\n\nResponse:\n%s", label, env.Status, env.StatusText, body)
}
