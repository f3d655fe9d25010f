package polydaq

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound     = errors.New("serial device not found")
	ErrPermissionDenied   = errors.New("permission denied accessing serial device")
	ErrDeviceInUse        = errors.New("serial device already in use")
	ErrDeviceDisconnected = errors.New("serial device disconnected")
	ErrInvalidBaudRate    = errors.New("invalid baud rate")
	ErrInvalidConfig      = errors.New("invalid serial configuration")
	ErrPortClosed         = errors.New("serial port is closed")
	ErrWriteTimeout       = errors.New("write operation timed out")
	ErrReadTimeout        = errors.New("read operation timed out")

	// Link and protocol errors
	ErrLinkClosed     = errors.New("link is closed")
	ErrInvalidChannel = errors.New("analog channel out of range")
	ErrExchangeBusy   = errors.New("an exchange is already pending")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)
