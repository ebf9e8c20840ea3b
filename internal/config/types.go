package config

// LoaderMode selects the warehouse bulk-load strategy.
type LoaderMode string

const (
	LoaderCopy  LoaderMode = "copy"
	LoaderBatch LoaderMode = "batch"
)

// Database holds PostgreSQL connection settings for the warehouse.
type Database struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     int    `yaml:"port" koanf:"port"`
	Name     string `yaml:"name" koanf:"name"`
	User     string `yaml:"user" koanf:"user"`
	Password string `yaml:"password" koanf:"password"`
	SSLMode  string `yaml:"sslmode" koanf:"sslmode"`
}

// Serve holds query service settings.
type Serve struct {
	Port     int    `yaml:"port" koanf:"port"`
	Username string `yaml:"username" koanf:"username"`
	Password string `yaml:"password" koanf:"password"`
	AllowAll bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// Config is the top-level logward configuration, corresponding to .logward.yml.
type Config struct {
	LogDir     string     `yaml:"log_dir" koanf:"log_dir"`
	OutDir     string     `yaml:"out_dir" koanf:"out_dir"`
	LoaderMode LoaderMode `yaml:"loader_mode" koanf:"loader_mode"`
	BatchSize  int        `yaml:"batch_size" koanf:"batch_size"`
	LogLevel   string     `yaml:"log_level" koanf:"log_level"`
	LogJSON    bool       `yaml:"log_json" koanf:"log_json"`
	Database   Database   `yaml:"database" koanf:"database"`
	Serve      Serve      `yaml:"serve" koanf:"serve"`
}
