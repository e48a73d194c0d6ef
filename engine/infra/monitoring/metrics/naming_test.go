package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricName(t *testing.T) {
	t.Run("Should add the namespace prefix once", func(t *testing.T) {
		assert.Equal(t, "hybridqa_questions_total", MetricName("questions_total"))
		assert.Equal(t, "hybridqa_questions_total", MetricName("hybridqa_questions_total"))
	})
}

func TestMetricNameWithSubsystem(t *testing.T) {
	tests := []struct {
		subsystem string
		name      string
		expected  string
	}{
		{subsystem: "qa", name: "repairs_total", expected: "hybridqa_qa_repairs_total"},
		{subsystem: "_knowledge_", name: "retrievals_total", expected: "hybridqa_knowledge_retrievals_total"},
		{subsystem: "http", name: "", expected: "hybridqa_http"},
		{subsystem: "", name: "hybridqa_build_info", expected: "hybridqa_build_info"},
	}
	for _, tt := range tests {
		t.Run("Should build "+tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, MetricNameWithSubsystem(tt.subsystem, tt.name))
		})
	}
}
