package modem

import "codeberg.org/mutker/radiolinkd/internal/errors"

const (
	ErrPortOpen  = errors.ErrorCode("modem_port_open_failed")
	ErrPortRead  = errors.ErrorCode("modem_port_read_failed")
	ErrPortClose = errors.ErrorCode("modem_port_close_failed")
)
