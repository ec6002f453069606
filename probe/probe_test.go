package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shoenig/test/must"
)

func TestParse(t *testing.T) {
	cases := []struct {
		test   string
		kind   string
		target string
	}{
		{"http example.org", "http", "example.org"},
		{"dns example.org", "dns", "example.org"},
		{"tcp example.org:443", "tcp", "example.org:443"},
		{"ping 192.168.1.1", "ping", "192.168.1.1"},
	}

	for _, tc := range cases {
		t.Run(tc.test, func(t *testing.T) {
			p, err := Parse(tc.test)
			must.NoError(t, err)
			must.Eq(t, tc.kind, p.Kind())
			must.Eq(t, tc.target, p.Target())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("")
	must.ErrorContains(t, err, "empty test definition")

	_, err = Parse("http")
	must.ErrorContains(t, err, "expects a target")

	_, err = Parse("icmp 10.0.0.1")
	must.ErrorContains(t, err, `unknown probe kind "icmp"`)
}

func TestHTTPProbe(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "watchdog-relay", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	p := NewHTTPProbe(ok.URL)
	must.NoError(t, p.Run(context.Background()))
}

func TestHTTPProbe_SchemePrepended(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	// Strip the scheme; the probe must default to plain http.
	p := NewHTTPProbe(srv.Listener.Addr().String())
	must.NoError(t, p.Run(context.Background()))
}

func TestHTTPProbe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProbe(srv.URL)
	must.ErrorContains(t, p.Run(context.Background()), "unexpected status 500")
}

func TestHTTPProbe_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewHTTPProbe(srv.URL)
	must.Error(t, p.Run(context.Background()))
}

func TestTCPProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	must.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := NewTCPProbe(ln.Addr().String())
	must.NoError(t, p.Run(context.Background()))
}

func TestTCPProbe_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	must.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	p := NewTCPProbe(addr)
	must.Error(t, p.Run(context.Background()))
}

func TestTCPProbe_MissingPort(t *testing.T) {
	p := NewTCPProbe("example.org")
	must.ErrorContains(t, p.Run(context.Background()), "must be host:port")
}

func TestDNSProbe_BadResolvConf(t *testing.T) {
	p := NewDNSProbe("example.org")
	p.resolvConf = "/nonexistent/resolv.conf"
	must.ErrorContains(t, p.Run(context.Background()), "reading /nonexistent/resolv.conf")
}

func TestPingProbe_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPingProbe("127.0.0.1")
	must.ErrorIs(t, p.Run(ctx), context.Canceled)
}
