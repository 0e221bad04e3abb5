package forecast

import (
	"github.com/OldStager01/sdn-telemetry/pkg/models"
)

// Thresholds drive status classification. A zero QoS limit disables that
// check.
type Thresholds struct {
	WarningMbps   float64
	CriticalMbps  float64
	MaxDelayMs    float64
	MaxPacketLoss float64
}

type Classifier struct {
	t Thresholds
}

func NewClassifier(t Thresholds) Classifier {
	return Classifier{t: t}
}

// Classify derives a status from the predicted load, then escalates it one
// level when QoS is breached. Escalation never lowers a status.
func (c Classifier) Classify(predictedMbps *float64, delayMs, packetLoss float64) models.Status {
	status := c.loadStatus(predictedMbps)
	if c.qosBreached(delayMs, packetLoss) {
		status = escalate(status)
	}
	return status
}

func (c Classifier) loadStatus(predictedMbps *float64) models.Status {
	if predictedMbps == nil {
		return models.StatusNormal
	}
	switch p := *predictedMbps; {
	case c.t.CriticalMbps > 0 && p > c.t.CriticalMbps:
		return models.StatusCritical
	case c.t.WarningMbps > 0 && p > c.t.WarningMbps:
		return models.StatusWarning
	default:
		return models.StatusNormal
	}
}

func (c Classifier) qosBreached(delayMs, packetLoss float64) bool {
	if c.t.MaxDelayMs > 0 && delayMs > c.t.MaxDelayMs {
		return true
	}
	return c.t.MaxPacketLoss > 0 && packetLoss > c.t.MaxPacketLoss
}

func escalate(s models.Status) models.Status {
	switch s {
	case models.StatusNormal:
		return models.StatusWarning
	default:
		return models.StatusCritical
	}
}
