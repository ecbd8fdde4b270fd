package metrics

// Config for the run metrics. A batch process usually exits before a
// scrape happens, so metrics are pushed to a Pushgateway when one is set;
// Address optionally serves /metrics while the run is in progress.
type Config struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	Namespace        string `yaml:"namespace" json:"namespace"`
	Address          string `yaml:"address" json:"address"` // e.g. ":9090"
	Path             string `yaml:"path" json:"path"`       // default /metrics
	PushGateway      string `yaml:"push_gateway" json:"push_gateway"`
	Job              string `yaml:"job" json:"job"`
	CollectGoMetrics bool   `yaml:"collect_go_metrics" json:"collect_go_metrics"`
}

func setDefaults(c *Config) {
	if c.Namespace == "" {
		c.Namespace = "dbkeeper"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if c.Job == "" {
		c.Job = "dbkeeper"
	}
}
