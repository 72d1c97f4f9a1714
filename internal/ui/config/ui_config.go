package ui_config

import "time"

const (
	KindScript      = "script"
	KindVideo       = "video"
	KindUserScripts = "user_scripts"

	DefaultScriptsDir  = "/app/hijack/scripts"
	DefaultRootSleep   = 20 * time.Second
	DefaultScriptSleep = 15 * time.Second
)

type Config struct {
	RootSleepSec int `hcl:"root_sleep_sec"`
	// RootBackCommand runs on POWER at root BACK line, host reacts as for long MENU press.
	RootBackCommand string `hcl:"root_back_command"`
	ScriptsDir      string `hcl:"scripts_dir"`
	// user custom script screen inherits this sleep
	CustomScriptSleepSec int `hcl:"custom_script_sleep_sec"`

	Screens []Screen `hcl:"screen"`
}

type Screen struct {
	Name     string `hcl:"name,key"`
	Kind     string `hcl:"kind"`
	Script   string `hcl:"script"`
	SleepSec int    `hcl:"sleep_sec"`
	// PollMs > 0 makes script screen ask helper for USSD answer while one is awaited.
	PollMs   int    `hcl:"poll_ms"`
}

// DefaultScreens is the stock screen set.
func DefaultScreens() []Screen {
	return []Screen{
		{Name: "Radio mode", Kind: KindScript, Script: "radio_mode.sh", SleepSec: 15},
		{Name: "SMS & USSD", Kind: KindScript, Script: "sms_and_ussd.sh", SleepSec: 60, PollMs: 1000},
		{Name: "Wi-Fi", Kind: KindScript, Script: "wifi.sh", SleepSec: 15},
		{Name: "TTL & IMEI", Kind: KindScript, Script: "ttl_and_imei.sh", SleepSec: 15},
		{Name: "Disable battery", Kind: KindScript, Script: "no_battery_mode.sh", SleepSec: 15},
		{Name: "Video", Kind: KindVideo, SleepSec: 300},
		{Name: "User scripts", Kind: KindUserScripts, Script: "user_scripts.sh", SleepSec: 20},
	}
}

func (c *Config) ApplyDefaults() {
	if c.ScriptsDir == "" {
		c.ScriptsDir = DefaultScriptsDir
	}
	if len(c.Screens) == 0 {
		c.Screens = DefaultScreens()
	}
}
