//go:build rp2040

package main

import (
	"machine"
)

// DUT bus: SPI0 on GPIO16-19, chip select on GPIO17 driven as a plain GPIO.
var (
	dutSPI  = machine.SPI0
	dutSCK  = machine.GPIO18
	dutMOSI = machine.GPIO19
	dutMISO = machine.GPIO16
)

// configureDUTBus sets up the SPI controller for the device under test.
// Mode 0, MSB first.
func configureDUTBus(frequency uint32) (*machine.SPI, error) {
	err := dutSPI.Configure(machine.SPIConfig{
		Frequency: frequency,
		SCK:       dutSCK,
		SDO:       dutMOSI, // SDO = Serial Data Out (MOSI)
		SDI:       dutMISO, // SDI = Serial Data In (MISO)
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}
	return dutSPI, nil
}
