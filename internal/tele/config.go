package tele

type Config struct {
	Enabled        bool   `hcl:"enable"`
	LogDebug       bool   `hcl:"log_debug"`
	MqttBroker     string `hcl:"mqtt_broker"`
	MqttUsername   string `hcl:"mqtt_username"`
	MqttPassword   string `hcl:"mqtt_password"`
	ClientId       string `hcl:"client_id"`
	TopicPrefix    string `hcl:"topic_prefix"`
	KeepaliveSec   int    `hcl:"keepalive_sec"`
	PingTimeoutSec int    `hcl:"ping_timeout_sec"`
	// empty means memory store
	StorePath string `hcl:"store_path"`
	TlsCaFile string `hcl:"tls_ca_file"`
}

const DefaultClientId = "oled"

func (c *Config) clientId() string {
	if c.ClientId == "" {
		return DefaultClientId
	}
	return c.ClientId
}

func (c *Config) topicPrefix() string {
	if c.TopicPrefix == "" {
		return c.clientId()
	}
	return c.TopicPrefix
}
