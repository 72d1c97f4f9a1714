package state

import (
	"path/filepath"
	"sync"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/display"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/input"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/process"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/tele"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	ui_config "github.com/aiemassfiria/huawei-oled-hijack-ng/internal/ui/config"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/video"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Display display.Config   `hcl:"display"`
	Input   InputConfig      `hcl:"input"`
	Process process.Config   `hcl:"process"`
	Tele    tele.Config      `hcl:"tele"`
	UI      ui_config.Config `hcl:"ui"`
	Video   video.Config     `hcl:"video"`

	_copy_guard sync.Mutex //nolint:unused
}

type InputConfig struct {
	DevInputEvent struct {
		Enable bool   `hcl:"enable"`
		Device string `hcl:"device"`
	} `hcl:"dev_input_event"`
	// linux key codes, defaults KEY_MENU=139 KEY_POWER=116
	KeyMenu  int `hcl:"key_menu"`
	KeyPower int `hcl:"key_power"`
}

func (c *InputConfig) KeyMap() input.KeyMap {
	km := input.DefaultKeyMap()
	if c.KeyMenu > 0 {
		km.Menu = types.InputKey(c.KeyMenu)
	}
	if c.KeyPower > 0 {
		km.Power = types.InputKey(c.KeyPower)
	}
	return km
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func (c *Config) applyDefaults() {
	if c.Process.Shell == "" {
		c.Process.Shell = "/bin/sh"
	}
	if c.Process.OutputLimit <= 0 {
		c.Process.OutputLimit = process.DefaultOutputLimit
	}
	if c.Video.Resolver == "" {
		c.Video.Resolver = video.DefaultResolver
	}
	if c.Video.MaxStallTicks <= 0 {
		c.Video.MaxStallTicks = video.DefaultMaxStallTicks
	}
	if c.Video.RecvBufferFactor <= 0 {
		c.Video.RecvBufferFactor = video.DefaultRecvBufferFactor
	}
	c.UI.ApplyDefaults()
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	c.applyDefaults()
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
