package nrf24

import (
	"github.com/soypat/nrf24/nrfspi"
)

// Device is the single point of contact with the chip. Mode values own one
// Device each and reach the chip only through it.
//
// Dev is the implementation backed by an SPI bus; tests and alternative
// transports may provide their own.
type Device interface {
	// CEEnable drives the CE pin high.
	CEEnable()
	// CEDisable drives the CE pin low.
	CEDisable()
	// Execute performs exactly one bus transaction: CSN low, full duplex
	// transfer of the command frame, CSN high. CSN is deasserted before any
	// transfer error is returned. The returned data excludes the status byte
	// and is only valid until the next call to Execute.
	Execute(cmd nrfspi.Command) (nrfspi.Status, []byte, error)
	// UpdateConfig applies fn to the cached CONFIG register and writes it to
	// the chip only if fn changed it. It is the only way to modify CONFIG, so
	// the cached and on-chip values never diverge.
	UpdateConfig(fn func(*nrfspi.Config)) error
}

// ReadRegister reads a single byte register such as nrfspi.FIFOStatus.
func ReadRegister[R nrfspi.RegisterDecoder[R]](d Device) (nrfspi.Status, R, error) {
	var zero R
	return ReadRegisterAs(d, zero)
}

// ReadRegisterAs reads the register described by like. It is needed for
// registers whose address or width depends on the value, such as
// nrfspi.RxAddr.
func ReadRegisterAs[R nrfspi.RegisterDecoder[R]](d Device, like R) (nrfspi.Status, R, error) {
	status, data, err := d.Execute(nrfspi.ReadRegister(like.Addr(), like.Len()))
	if err != nil {
		return status, like, err
	}
	if len(data) < like.Len() {
		return status, like, nrfspi.ErrShortResponse
	}
	return status, like.Decode(data), nil
}

// WriteRegister writes r and returns the status clocked out during the write.
func WriteRegister(d Device, r nrfspi.Register) (nrfspi.Status, error) {
	status, _, err := d.Execute(nrfspi.WriteRegister(r))
	return status, err
}

// UpdateConfig is Device.UpdateConfig for mutators that return a value.
func UpdateConfig[T any](d Device, fn func(*nrfspi.Config) T) (T, error) {
	var result T
	err := d.UpdateConfig(func(c *nrfspi.Config) {
		result = fn(c)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// claimer is implemented by devices that track whether a mode holds them.
type claimer interface {
	claim() error
	unclaim()
}
