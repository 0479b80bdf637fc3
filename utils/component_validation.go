// Package utils contains small helpers shared by the roombactl packages.
package utils

// ValidBaudRates are the line speeds the Open Interface accepts.
var ValidBaudRates = []uint{300, 600, 1200, 2400, 4800, 9600, 14400, 19200, 28800, 38400, 57600, 115200}

// ValidateBaudRate reports whether baudRate is one of validBaudRates.
func ValidateBaudRate(validBaudRates []uint, baudRate int) bool {
	if baudRate <= 0 {
		return false
	}
	for _, val := range validBaudRates {
		if val == uint(baudRate) {
			return true
		}
	}
	return false
}
