package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(LegislationCacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(LegislationCacheLookups.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(LegislationCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(LegislationCacheLookups.WithLabelValues("miss")))
}

func TestRecordGeneration(t *testing.T) {
	ok := testutil.ToFloat64(GenerationCalls.WithLabelValues("classify", "success"))
	failed := testutil.ToFloat64(GenerationCalls.WithLabelValues("classify", "error"))

	RecordGeneration("classify", nil)
	RecordGeneration("classify", errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(GenerationCalls.WithLabelValues("classify", "success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(GenerationCalls.WithLabelValues("classify", "error")))
}

func TestObserveStage(t *testing.T) {
	before := testutil.CollectAndCount(PipelineStageDuration)
	ObserveStage("metrics-test-stage", time.Now().Add(-time.Second))
	assert.Equal(t, before+1, testutil.CollectAndCount(PipelineStageDuration))
}
