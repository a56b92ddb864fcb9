package handlers

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clients key off these exact field names to evict deleted rows, so the
// payloads are pinned byte for byte.
func TestDeleteEventPayloadKeys(t *testing.T) {
	cases := []struct {
		name    string
		payload gin.H
		want    string
	}{
		{"assignment", assignmentDeletedPayload(7), `{"assignment_id":7}`},
		{"submission", submissionDeletedPayload(21), `{"submission_id":21}`},
		{"message", messageDeletedPayload(33), `{"message_id":33}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.payload)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(raw))
		})
	}
}
