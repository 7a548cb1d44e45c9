package config

type AppConfig struct {
	ListenAddr  string        `yaml:"listen_addr" env:"IRT_LISTEN_ADDR" env-default:"0.0.0.0:3000"`
	Environment string        `yaml:"environment" env:"IRT_ENVIRONMENT" env-default:"development"`
	CORSOrigins []string      `yaml:"cors_origins" env:"IRT_CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	Graph       GraphConfig   `yaml:"graph"`
	Uploads     UploadsConfig `yaml:"uploads"`
	Sweeper     SweeperConfig `yaml:"sweeper"`
}

type GraphConfig struct {
	URI      string `yaml:"uri" env:"IRT_GRAPH_URI" env-default:"bolt://localhost:7687"`
	Username string `yaml:"username" env:"IRT_GRAPH_USERNAME" env-default:"neo4j"`
	Password string `yaml:"password" env:"IRT_GRAPH_PASSWORD" env-default:"password"`
	Database string `yaml:"database" env:"IRT_GRAPH_DATABASE" env-default:"neo4j"`
}

type UploadsConfig struct {
	Dir        string `yaml:"dir" env:"IRT_UPLOADS_DIR" env-default:"data/uploads"`
	DiagramDir string `yaml:"diagram_dir" env:"IRT_UPLOADS_DIAGRAM_DIR" env-default:"data/uploads/diagrams"`
	MaxBytes   int64  `yaml:"max_bytes" env:"IRT_UPLOADS_MAX_BYTES" env-default:"10485760"`
}

type SweeperConfig struct {
	Enabled  bool   `yaml:"enabled" env:"IRT_SWEEPER_ENABLED" env-default:"true"`
	Schedule string `yaml:"schedule" env:"IRT_SWEEPER_SCHEDULE" env-default:"0 3 * * *"`
	MinAge   string `yaml:"min_age" env:"IRT_SWEEPER_MIN_AGE" env-default:"1h"`
}

func (c *AppConfig) IsDevelopment() bool {
	return c != nil && c.Environment == "development"
}
