package serial

// Port is an open serial line. Read returns (0, nil) once the configured
// read timeout passes without data.
type Port interface {
	Close() error
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	FlushInput() error
	FlushOutput() error
}

// Opener opens a serial port; Open satisfies it
type Opener func(device string, opts ...Option) (Port, error)

func applyOptions(opts []Option) (Config, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return config, err
		}
	}
	return config, nil
}
