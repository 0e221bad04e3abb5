package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		WarningMbps:   900,
		CriticalMbps:  1100,
		MaxDelayMs:    150,
		MaxPacketLoss: 1.0,
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(defaultThresholds())

	tests := []struct {
		name      string
		predicted *float64
		delay     float64
		loss      float64
		want      models.Status
	}{
		{"low load healthy", ptr(500), 20, 0, models.StatusNormal},
		{"no prediction healthy", nil, 20, 0, models.StatusNormal},
		{"warning load", ptr(950), 20, 0, models.StatusWarning},
		{"critical load", ptr(1200), 20, 0, models.StatusCritical},
		{"threshold is exclusive", ptr(900), 20, 0, models.StatusNormal},
		{"delay breach escalates normal", ptr(500), 200, 0, models.StatusWarning},
		{"delay breach escalates warning", ptr(950), 200, 0, models.StatusCritical},
		{"loss breach escalates warning", ptr(950), 20, 2.5, models.StatusCritical},
		{"breach on critical stays critical", ptr(1200), 200, 5, models.StatusCritical},
		{"breach without prediction", nil, 20, 1.5, models.StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.predicted, tt.delay, tt.loss))
		})
	}
}

func TestClassifier_ZeroThresholdsDisableChecks(t *testing.T) {
	c := NewClassifier(Thresholds{})
	assert.Equal(t, models.StatusNormal, c.Classify(ptr(5000), 1000, 50))
}
