package storage

import (
	"encoding/json"
	"errors"

	"myrmex/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeTelemetry(h model.TelemetryHistory) ([]byte, error) {
	return json.Marshal(h)
}

func DecodeTelemetry(data []byte) (model.TelemetryHistory, error) {
	var history model.TelemetryHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return model.TelemetryHistory{}, err
	}
	if err := checkVersion(history.VersionedRecord); err != nil {
		return model.TelemetryHistory{}, err
	}
	return history, nil
}

func EncodeConsensusEvents(events []model.ConsensusEvent) ([]byte, error) {
	return json.Marshal(events)
}

func DecodeConsensusEvents(data []byte) ([]model.ConsensusEvent, error) {
	var events []model.ConsensusEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func EncodeRewardSummaries(summaries []model.RewardSummary) ([]byte, error) {
	return json.Marshal(summaries)
}

func DecodeRewardSummaries(data []byte) ([]model.RewardSummary, error) {
	var summaries []model.RewardSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Stamp marks a record with the versions this build writes.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
