package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordExtraction(t *testing.T) {
	before := testutil.ToFloat64(ExtractionOutcomes.WithLabelValues("disposal", "ok"))

	RecordExtraction("disposal", "ok")
	RecordExtraction("disposal", "ok")

	after := testutil.ToFloat64(ExtractionOutcomes.WithLabelValues("disposal", "ok"))
	assert.Equal(t, before+2, after)
}
