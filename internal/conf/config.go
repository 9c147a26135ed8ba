package conf

import (
	"fmt"
)

type Bootstrap struct {
	Server *Server `yaml:"server" json:"server"`
	Data   *Data   `yaml:"data" json:"data"`
	App    *App    `yaml:"app" json:"app"`
	Log    *Log    `yaml:"log" json:"log"`
}

type Server struct {
	Http struct {
		Addr    string `yaml:"addr" json:"addr"`
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`
}

type Data struct {
	Database struct {
		Driver          string `yaml:"driver" json:"driver"`
		Source          string `yaml:"source" json:"source"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	} `yaml:"database" json:"database"`
	Redis struct {
		Addr         string `yaml:"addr" json:"addr"`
		Password     string `yaml:"password" json:"password"`
		Db           int32  `yaml:"db" json:"db"`
		ReadTimeout  string `yaml:"read_timeout" json:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" json:"write_timeout"`
		DialTimeout  string `yaml:"dial_timeout" json:"dial_timeout"`
	} `yaml:"redis" json:"redis"`
}

// App holds the application-level settings of the subscription service.
type App struct {
	// BaseURL is the public origin used to build approval links,
	// e.g. https://app.medplanner.com.br
	BaseURL string `yaml:"base_url" json:"base_url"`
	// WhatsApp is the outbound notification channel for discount approvals
	WhatsApp *WhatsApp `yaml:"whatsapp" json:"whatsapp"`
}

// WhatsApp configures the approval notification channel.
type WhatsApp struct {
	// AdminPhone is the destination number in international format, digits only
	AdminPhone string `yaml:"admin_phone" json:"admin_phone"`
	// GatewayURL is an optional webhook that delivers the prefilled link
	// out-of-band; when empty the link is only logged and returned to the caller
	GatewayURL string `yaml:"gateway_url" json:"gateway_url"`
	// Timeout for a single gateway delivery attempt
	Timeout string `yaml:"timeout" json:"timeout"`
}

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// Validate validates the configuration
func (b *Bootstrap) Validate() error {
	if b.Server == nil {
		return fmt.Errorf("server configuration is required")
	}
	if b.Server.Http.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil {
		return fmt.Errorf("data configuration is required")
	}
	if b.Data.Database.Source == "" {
		return fmt.Errorf("data.database.source is required")
	}
	if b.App == nil {
		return fmt.Errorf("app configuration is required")
	}
	if b.App.BaseURL == "" {
		return fmt.Errorf("app.base_url is required")
	}
	if b.App.WhatsApp == nil || b.App.WhatsApp.AdminPhone == "" {
		return fmt.Errorf("app.whatsapp.admin_phone is required")
	}
	if b.Log == nil {
		return fmt.Errorf("log configuration is required")
	}
	return nil
}
