package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	wavePositionIDsEnv        = "WAVE_POSITION_IDS"
	waveBucketMinutesEnv      = "WAVE_BUCKET_MINUTES"
	waveThresholdEnv          = "WAVE_THRESHOLD"
	waveMinCalmMinutesEnv     = "WAVE_MIN_CALM_MINUTES"
	waveNotifyDelayMinutesEnv = "WAVE_NOTIFY_DELAY_MINUTES"
	waveSmoothRadiusEnv       = "WAVE_SMOOTH_RADIUS"
	waveWorkerEnabledEnv      = "WAVE_WORKER_ENABLED"

	defaultWaveBucketMinutes      = 5
	defaultWaveThreshold          = 20
	defaultWaveMinCalmMinutes     = 15
	defaultWaveNotifyDelayMinutes = 5
	defaultWaveSmoothRadius       = 1
)

// WaveConfig holds the store-independent calm-window defaults. Stores may
// override every field except SmoothRadius and WorkerEnabled.
type WaveConfig struct {
	PositionIDs        []string
	BucketMinutes      int
	Threshold          int
	MinCalmMinutes     int
	NotifyDelayMinutes int
	SmoothRadius       int
	WorkerEnabled      bool
}

func LoadWaveConfig() *WaveConfig {
	delay := defaultWaveNotifyDelayMinutes
	if v := os.Getenv(waveNotifyDelayMinutesEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			delay = parsed
		}
	}

	return &WaveConfig{
		PositionIDs:        splitList(os.Getenv(wavePositionIDsEnv)),
		BucketMinutes:      positiveIntEnv(waveBucketMinutesEnv, defaultWaveBucketMinutes),
		Threshold:          positiveIntEnv(waveThresholdEnv, defaultWaveThreshold),
		MinCalmMinutes:     positiveIntEnv(waveMinCalmMinutesEnv, defaultWaveMinCalmMinutes),
		NotifyDelayMinutes: delay,
		SmoothRadius:       positiveIntEnv(waveSmoothRadiusEnv, defaultWaveSmoothRadius),
		WorkerEnabled:      os.Getenv(waveWorkerEnabledEnv) != "false",
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
