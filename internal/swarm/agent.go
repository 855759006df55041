package swarm

import (
	"fmt"
	"math"

	"myrmex/internal/model"
)

// Meters per degree of latitude, used for the flat-earth position model.
const metersPerDegree = 111000.0

const (
	aerialSpeedMS = 12.0
	groundSpeedMS = 0.1
	sensorSpeedMS = 0.0
)

const arrivalDistanceM = 1.0

// Agent is a single swarm entity. One struct covers every kind; the
// kind tag selects capability (cruise speed, mobility) rather than a
// separate representation per platform.
type Agent struct {
	ID       string               `json:"id"`
	Kind     string               `json:"kind"`
	Lat      float64              `json:"lat"`
	Lon      float64              `json:"lon"`
	Alt      float64              `json:"alt"`
	VelLat   float64              `json:"vel_lat"`
	VelLon   float64              `json:"vel_lon"`
	VelAlt   float64              `json:"vel_alt"`
	Heading  float64              `json:"heading"`
	Behavior string               `json:"behavior"`
	Sensors  model.SensorReadings `json:"sensors"`
	Decision model.DecisionState  `json:"decision"`
}

func NewAgent(id, kind string) (*Agent, error) {
	switch kind {
	case model.AgentKindAerial, model.AgentKindGround, model.AgentKindSensor:
	default:
		return nil, fmt.Errorf("agent %s: unknown kind %q", id, kind)
	}
	return &Agent{
		ID:       id,
		Kind:     kind,
		Behavior: model.BehaviorIdle,
		Sensors: model.SensorReadings{
			SoilMoisturePercent: 20.0,
			SoilPH:              7.2,
			TemperatureC:        25.0,
			LightLevel:          0.5,
			CO2PPM:              400.0,
		},
		Decision: model.DecisionState{
			Confidence:      0.5,
			TaskPriority:    0.3,
			Arousal:         0.7,
			SocialInfluence: 0.5,
		},
	}, nil
}

// SetPosition validates coordinates before they reach aggregate math.
// A NaN that slips into the centroid poisons every later tick, so this
// is the one place position input fails hard.
func (a *Agent) SetPosition(lat, lon, alt float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsNaN(alt) {
		return fmt.Errorf("agent %s: position (%f, %f, %f) contains NaN", a.ID, lat, lon, alt)
	}
	a.Lat, a.Lon, a.Alt = lat, lon, alt
	return nil
}

func (a *Agent) speed() float64 {
	switch a.Kind {
	case model.AgentKindAerial:
		return aerialSpeedMS
	case model.AgentKindGround:
		return groundSpeedMS
	default:
		return sensorSpeedMS
	}
}

// Move integrates velocity over dt. Horizontal velocity is in m/s and
// positions in degrees, so the horizontal terms divide by the
// meters-per-degree constant; altitude integrates directly.
func (a *Agent) Move(dtSeconds float64) {
	a.Lat += a.VelLat * dtSeconds / metersPerDegree
	a.Lon += a.VelLon * dtSeconds / metersPerDegree
	a.Alt += a.VelAlt * dtSeconds
}

// Decide folds the current sensor snapshot into a task-priority scalar
// and maps it to a discrete action. Decision state is overwritten each
// call; nothing here accumulates across ticks.
func (a *Agent) Decide() string {
	potential := 0.0

	// Wet soil lowers the urge to act; acidic soil raises it.
	potential -= (a.Sensors.SoilMoisturePercent / 100.0) * 0.3
	potential += ((7.5 - a.Sensors.SoilPH) / 7.5) * 0.2

	if a.Sensors.ThreatsDetected > 0 {
		potential -= 0.8
		a.Decision.Arousal = 0.95
	}
	if a.Sensors.TemperatureC < 10.0 {
		potential -= 0.2
		a.Decision.Arousal *= 0.7
	}

	a.Decision.TaskPriority = clamp01(potential)
	a.Decision.RecentSpikes = int(math.Abs(potential) * 100.0)

	return a.action()
}

func (a *Agent) action() string {
	switch p := a.Decision.TaskPriority; {
	case p > 0.8:
		return model.ActionExecuteTask
	case p > 0.5:
		return model.ActionExplore
	case p > 0.2:
		return model.ActionMonitor
	default:
		return model.ActionReturnHome
	}
}

// MoveToward points the agent at a target and sets cruise velocity for
// its kind. Within the arrival distance the agent stops and switches to
// executing.
func (a *Agent) MoveToward(targetLat, targetLon float64) {
	dlat := targetLat - a.Lat
	dlon := targetLon - a.Lon
	a.Heading = math.Atan2(dlon, dlat) * 180.0 / math.Pi

	distanceM := math.Sqrt(dlat*dlat+dlon*dlon) * metersPerDegree
	if distanceM > arrivalDistanceM {
		rad := a.Heading * math.Pi / 180.0
		a.VelLat = math.Sin(rad) * a.speed()
		a.VelLon = math.Cos(rad) * a.speed()
		a.Behavior = model.BehaviorExploring
	} else {
		a.VelLat, a.VelLon, a.VelAlt = 0, 0, 0
		a.Behavior = model.BehaviorExecuting
	}
}

// Snapshot returns the plain serializable view of the agent.
func (a *Agent) Snapshot(action string) model.AgentSnapshot {
	return model.AgentSnapshot{
		ID:       a.ID,
		Kind:     a.Kind,
		Lat:      a.Lat,
		Lon:      a.Lon,
		Alt:      a.Alt,
		Heading:  a.Heading,
		Behavior: a.Behavior,
		Action:   action,
		Sensors:  a.Sensors,
		Decision: a.Decision,
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
