package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

const (
	AgentKindAerial = "aerial"
	AgentKindGround = "ground"
	AgentKindSensor = "sensor"
)

const (
	BehaviorIdle          = "idle"
	BehaviorExploring     = "exploring"
	BehaviorExecuting     = "executing"
	BehaviorReturning     = "returning"
	BehaviorCommunicating = "communicating"
	BehaviorError         = "error"
)

const (
	ActionExecuteTask = "execute_task"
	ActionExplore     = "explore"
	ActionMonitor     = "monitor"
	ActionReturnHome  = "return_home"
)

const (
	MissionActionSurvey  = "survey"
	MissionActionDeliver = "deliver"
	MissionActionAmend   = "amend"
	MissionActionMonitor = "monitor"
	MissionActionRetreat = "retreat"
	MissionActionExplore = "explore"
)

const (
	ConsensusExplore     = "explore"
	ConsensusConcentrate = "concentrate"
	ConsensusRetreat     = "retreat"
	ConsensusWait        = "wait"
)

const (
	ObjectiveSurvey             = "survey"
	ObjectiveWaterDelivery      = "water_delivery"
	ObjectiveSoilAmendment      = "soil_amendment"
	ObjectiveWildlifeMonitoring = "wildlife_monitoring"
	ObjectiveFireSuppression    = "fire_suppression_prep"
)

type SensorReadings struct {
	SoilMoisturePercent float64 `json:"soil_moisture_percent"`
	SoilPH              float64 `json:"soil_ph"`
	TemperatureC        float64 `json:"temperature_c"`
	LightLevel          float64 `json:"light_level"`
	CO2PPM              float64 `json:"co2_ppm"`
	ThreatsDetected     int     `json:"threats_detected"`
}

type DecisionState struct {
	Confidence      float64 `json:"confidence"`
	TaskPriority    float64 `json:"task_priority"`
	Arousal         float64 `json:"arousal"`
	SocialInfluence float64 `json:"social_influence"`
	RecentSpikes    int     `json:"recent_spikes"`
}

// AgentSnapshot is the cross-process view of one agent after a tick.
type AgentSnapshot struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Lat      float64        `json:"lat"`
	Lon      float64        `json:"lon"`
	Alt      float64        `json:"alt"`
	Heading  float64        `json:"heading"`
	Behavior string         `json:"behavior"`
	Action   string         `json:"action"`
	Sensors  SensorReadings `json:"sensors"`
	Decision DecisionState  `json:"decision"`
}

type CoordinationState struct {
	CentroidLat        float64 `json:"centroid_lat"`
	CentroidLon        float64 `json:"centroid_lon"`
	AverageArousal     float64 `json:"average_arousal"`
	GroupCohesion      float64 `json:"group_cohesion"`
	TimeSinceDecisionS float64 `json:"time_since_decision_s"`
}

type MissionObjective struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	TargetZoneID    int     `json:"target_zone_id"`
	Urgency         float64 `json:"urgency"`
	RequiredAgents  int     `json:"required_agents"`
	DeadlineSeconds int     `json:"deadline_seconds"`
}

type AllocationEntry struct {
	AgentID     string `json:"agent_id"`
	ObjectiveID string `json:"objective_id"`
}

type FaultCounters struct {
	EmptyCollective   int `json:"empty_collective"`
	UnknownAgent      int `json:"unknown_agent"`
	InvalidLayerIndex int `json:"invalid_layer_index"`
	DivisionGuard     int `json:"division_guard"`
}

// TickTelemetry is the per-tick observability record emitted by the engine.
type TickTelemetry struct {
	Tick         int               `json:"tick"`
	Coordination CoordinationState `json:"coordination"`
	Consensus    string            `json:"consensus"`
	SpikeTotal   int               `json:"spike_total"`
	Allocated    int               `json:"allocated"`
	Faults       FaultCounters     `json:"faults"`
}

type ConsensusEvent struct {
	Tick     int    `json:"tick"`
	Decision string `json:"decision"`
}

type RewardSummary struct {
	AgentID          string  `json:"agent_id"`
	CumulativeReward float64 `json:"cumulative_reward"`
	ValueEstimate    float64 `json:"value_estimate"`
	EpisodeRewards   int     `json:"episode_rewards"`
}

type RunRecord struct {
	VersionedRecord
	RunID            string            `json:"run_id"`
	CreatedAtUTC     string            `json:"created_at_utc"`
	Seed             int64             `json:"seed"`
	Agents           int               `json:"agents"`
	Ticks            int               `json:"ticks"`
	FinalConsensus   string            `json:"final_consensus"`
	FinalCoordinate  CoordinationState `json:"final_coordination"`
	CollectiveReward float64           `json:"collective_reward"`
}

type TelemetryHistory struct {
	VersionedRecord
	RunID string          `json:"run_id"`
	Ticks []TickTelemetry `json:"ticks"`
}
