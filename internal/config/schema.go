package config

// Config is the top-level YAML structure.
type Config struct {
	Version string      `yaml:"version"`
	Writer  WriterConf  `yaml:"writer"`
	Storage StorageConf `yaml:"storage"`
	Rules   RulesConf   `yaml:"rules"`
}

// WriterConf holds tunables for the background persistence writer.
type WriterConf struct {
	Workers          int `yaml:"workers"`
	QueueDepth       int `yaml:"queue_depth"`
	PersistTimeoutMs int `yaml:"persist_timeout_ms"`
}

// StorageConf points at the notification store.
type StorageConf struct {
	Path string `yaml:"path"`
}

// RulesConf holds the evaluation thresholds. Zero values mean "use default".
type RulesConf struct {
	OverspendingThreshold      float64   `yaml:"overspending_threshold"`
	CriticalSpendingThreshold  float64   `yaml:"critical_spending_threshold"`
	GoalMilestones             []float64 `yaml:"goal_milestones"`
	AnomalyConfidenceThreshold float64   `yaml:"anomaly_confidence_threshold"`
	InsightRelevanceThreshold  float64   `yaml:"insight_relevance_threshold"`
}
