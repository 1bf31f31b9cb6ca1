package transport

import (
	"github.com/tarm/serial"
)

// SerialOpener opens a CC253x coordinator over a real serial device using
// github.com/tarm/serial. Two independent ports are opened, one per
// direction, since a tarm/serial *Port is not safely shared between a
// reader and a writer goroutine the way a duplicated raw file descriptor
// would be.
type SerialOpener struct{}

func (SerialOpener) Open(cfg Config) (readHalf, writeHalf Transport, err error) {
	cfg = cfg.withDefaults()
	paths := candidatePaths(cfg.Path)

	var firstErr error
	for _, path := range paths {
		readPort, err := serial.OpenPort(&serial.Config{
			Name:        path,
			Baud:        cfg.BaudRate,
			ReadTimeout: cfg.ReadTimeout,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		writePort, err := serial.OpenPort(&serial.Config{
			Name: path,
			Baud: cfg.BaudRate,
		})
		if err != nil {
			readPort.Close()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return readPort, writePort, nil
	}
	return nil, nil, &ErrSerialOpen{Path: cfg.Path, Err: firstErr}
}
