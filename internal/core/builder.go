package core

import (
	"time"

	"uartbridge/config"
	"uartbridge/internal/metrics"
	"uartbridge/internal/retry"
	"uartbridge/internal/transport"
	"uartbridge/util"
)

// Build opens the serial device and constructs the appropriate Mode
// from the given configuration.  This is the single dispatch point
// between server and client mode; the returned mode owns the device
// for the life of the process.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	serial, err := transport.OpenSerial(cfg)
	if err != nil {
		return nil, err
	}

	address := util.FormatAddr(cfg.Host, cfg.Port)
	m := metrics.New()

	if cfg.Listen {
		return &ServerMode{
			Address:       address,
			Serial:        serial,
			Timeout:       cfg.Timeout,
			ChunkSize:     cfg.ChunkSize,
			BusyPolicy:    cfg.BusyPolicy,
			ReopenDevice:  cfg.ReopenDevice,
			ReopenBackoff: reopenBackoff(),
			Logger:        logger,
			Metrics:       m,
		}, nil
	}

	return &ClientMode{
		Address:          address,
		Serial:           serial,
		Dialer:           &transport.TCPDialer{Timeout: config.DefaultDialTimeout},
		Timeout:          cfg.Timeout,
		ChunkSize:        cfg.ChunkSize,
		Reconnect:        cfg.Reconnect,
		ReconnectBackoff: retry.DefaultBackoff(),
		Logger:           logger,
		Metrics:          m,
	}, nil
}

// reopenBackoff is tuned for a device that may take a moment to
// re-enumerate (e.g. a USB adapter being re-plugged).
func reopenBackoff() *retry.Backoff {
	return &retry.Backoff{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     config.DefaultReopenMaxBackoff,
		Multiplier:   2.0,
		MaxAttempts:  config.DefaultReopenMaxAttempts,
		Jitter:       true,
	}
}
