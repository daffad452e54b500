package cli

import (
	"net/http"

	"github.com/gorilla/websocket"

	"prdoc/internal/config"
	"prdoc/internal/realtime"
	"prdoc/internal/status"
)

// serverHeader turns server.headers into request headers, nil when unset.
func serverHeader(cfg *config.Config) http.Header {
	if len(cfg.Server.Headers) == 0 {
		return nil
	}
	h := make(http.Header, len(cfg.Server.Headers))
	for k, v := range cfg.Server.Headers {
		h.Set(k, v)
	}
	return h
}

func dialOptions(cfg *config.Config) []realtime.Option {
	return []realtime.Option{
		realtime.WithPath(cfg.Server.SocketPath),
		realtime.WithDialer(&websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.Server.Timeout,
		}),
		realtime.WithHeader(serverHeader(cfg)),
	}
}

func newChecker(cfg *config.Config) *status.Checker {
	c := status.NewChecker(cfg.Server.StatusURL(), cfg.Server.Timeout)
	c.Header = serverHeader(cfg)
	return c
}
