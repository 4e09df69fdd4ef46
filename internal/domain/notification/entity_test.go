// internal/domain/notification/entity_test.go
package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsEmail(t *testing.T) {
	tests := []struct {
		priority string
		expected bool
	}{
		{PriorityLow, false},
		{PriorityMedium, false},
		{PriorityHigh, true},
		{PriorityCritical, true},
	}

	for _, tt := range tests {
		n := Notification{Priority: tt.priority}
		assert.Equal(t, tt.expected, n.NeedsEmail(), tt.priority)
	}
}
