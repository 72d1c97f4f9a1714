package display

import (
	"github.com/juju/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// powerPin drives panel supply or backlight enable line.
type powerPin struct {
	pin    gpio.PinOut
	invert bool
}

func openPowerPin(name string, invert bool) (*powerPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph host init")
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.NotFoundf("gpio=%s", name)
	}
	return &powerPin{pin: pin, invert: invert}, nil
}

func (p *powerPin) Set(on bool) error {
	return p.pin.Out(gpio.Level(on != p.invert))
}
