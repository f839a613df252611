package conf

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Bootstrap is the root configuration document.
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Geo      *Geo      `json:"geo"`
	Tracking *Tracking `json:"tracking"`
	Auth     *Auth     `json:"auth"`
	Mail     *Mail     `json:"mail"`
	Rabbitmq *Rabbitmq `json:"rabbitmq"`
	Log      *Log      `json:"log"`
}

type Server struct {
	Http *Server_HTTP `json:"http"`
	Grpc *Server_GRPC `json:"grpc"`
}

type Server_HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Server_GRPC struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
}

type Data_Database struct {
	// Driver is "sqlite3" or "postgres".
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Data_Redis struct {
	// An empty Addr disables Redis.
	Addr         string   `json:"addr"`
	Password     string   `json:"password"`
	Db           int      `json:"db"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
}

// Geo configures IP geolocation. MaxmindDb takes precedence over ProviderUrl.
type Geo struct {
	ProviderUrl string   `json:"provider_url"`
	Timeout     Duration `json:"timeout"`
	MaxmindDb   string   `json:"maxmind_db"`
}

type Tracking struct {
	// LoadHistory selects the integration load store: "memory" or "redis".
	LoadHistory string `json:"load_history"`
	// PublicBaseUrl is used to build the embed code snippet.
	PublicBaseUrl string `json:"public_base_url"`
}

type Auth struct {
	JwtSecret string `json:"jwt_secret"`
}

type Mail struct {
	// Driver is "ses" or "log".
	Driver      string `json:"driver"`
	Region      string `json:"region"`
	FromEmail   string `json:"from_email"`
	FromName    string `json:"from_name"`
	FrontendUrl string `json:"frontend_url"`
}

type Rabbitmq struct {
	// An empty Url disables the signup consumer.
	Url      string `json:"url"`
	Exchange string `json:"exchange"`
	Queue    string `json:"queue"`
}

type Log struct {
	Level string `json:"level"`
	// File enables a rotating log file next to stdout.
	File string `json:"file"`
}

// Duration decodes "5s" style strings as well as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		d.Duration = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v, err := time.ParseDuration(str)
		if err != nil {
			return fmt.Errorf("conf: invalid duration %q: %w", str, err)
		}
		d.Duration = v
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("conf: invalid duration %s: %w", s, err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// AsDuration mirrors durationpb so call sites read the same either way.
func (d Duration) AsDuration() time.Duration {
	return d.Duration
}
