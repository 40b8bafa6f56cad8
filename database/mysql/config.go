package mysql

// Config represent root of mysql config
type Config struct {
	Master   Connection   `yaml:"master"`
	Replicas []Connection `yaml:"replicas"`
	ConnCfg  ConnCfg      `yaml:"conn_cfg"`
	LogLevel int          `yaml:"log_level"`
}

// Connection is the address and credentials of a single mysql server.
type Connection struct {
	Host     string `yaml:"host"`
	Port     uint   `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
}

// ConnCfg sizes the connection pool.
type ConnCfg struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
}

const dsnTemplate = "%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC"
