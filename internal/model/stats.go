package model

import "time"

// TableStat describes one user table.
type TableStat struct {
	Schema    string `json:"schema" yaml:"schema"`
	Name      string `json:"name" yaml:"name"`
	Owner     string `json:"owner" yaml:"owner"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
	RowCount  int64  `json:"row_count" yaml:"row_count"`
}

type ConnectionCounts struct {
	Total  int64 `json:"total" yaml:"total"`
	Active int64 `json:"active" yaml:"active"`
	Idle   int64 `json:"idle" yaml:"idle"`
}

type CacheInfo struct {
	Version          string `json:"version" yaml:"version"`
	MemoryUsed       int64  `json:"memory_used" yaml:"memory_used"`
	MemoryUsedHuman  string `json:"memory_used_human" yaml:"memory_used_human"`
	ConnectedClients int64  `json:"connected_clients" yaml:"connected_clients"`
	KeyCount         int64  `json:"key_count" yaml:"key_count"`
}

type DatabaseInfo struct {
	Driver   string `json:"driver" yaml:"driver"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Database string `json:"database" yaml:"database"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Report is the data report artifact. Tables is always present (possibly
// empty); ConnectionCounts and CacheInfo are nil when unavailable.
type Report struct {
	RunID            string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Timestamp        time.Time         `json:"timestamp" yaml:"timestamp"`
	Database         DatabaseInfo      `json:"database" yaml:"database"`
	Tables           []TableStat       `json:"tables" yaml:"tables"`
	ConnectionCounts *ConnectionCounts `json:"connection_counts,omitempty" yaml:"connection_counts,omitempty"`
	CacheInfo        *CacheInfo        `json:"cache_info,omitempty" yaml:"cache_info,omitempty"`
	TaskResults      []TaskResult      `json:"task_results" yaml:"task_results"`
}

// VacuumOutcome is the payload of the vacuum task.
type VacuumOutcome struct {
	Processed []string          `json:"processed" yaml:"processed"`
	Failed    map[string]string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// BackupFile is one exported table.
type BackupFile struct {
	Table string `json:"table" yaml:"table"`
	Path  string `json:"path" yaml:"path"`
	Rows  int64  `json:"rows" yaml:"rows"`
}
