package ldapsource

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/authdata/authdata/internal/config"
)

// ErrCACertificate is returned when the configured CA file holds no certificate.
var ErrCACertificate = errors.New("no certificate found in CA file")

// Conn is the part of *ldap.Conn the adapter uses.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// Dialer opens an unbound connection to the directory.
type Dialer func(ctx context.Context, cfg config.LDAP) (Conn, error)

// Dial connects with go-ldap, upgrading the connection with StartTLS when configured.
func Dial(ctx context.Context, cfg config.LDAP) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ldapURL := serverURL(cfg.Host)

	tlsConfig, err := newTLSConfig(cfg, ldapURL)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Timeout) * time.Second

	conn, err := ldap.DialURL(ldapURL,
		ldap.DialWithTLSConfig(tlsConfig),
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if cfg.StartTLS && !strings.HasPrefix(ldapURL, "ldaps://") {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	if timeout > 0 {
		conn.SetTimeout(timeout)
	}

	return conn, nil
}

// serverURL accepts ldap:// and ldaps:// URLs as well as bare host[:port] values.
func serverURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}

	return "ldap://" + host
}

func newTLSConfig(cfg config.LDAP, ldapURL string) (*tls.Config, error) {
	serverName := ""
	if u, err := url.Parse(ldapURL); err == nil {
		serverName = u.Hostname()
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.SkipVerify, //nolint:gosec // test directories run with self signed certificates
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.CACertFile == "" {
		return tlsConfig, nil
	}

	pem, err := os.ReadFile(cfg.CACertFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file %s: %w", cfg.CACertFile, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: %s", ErrCACertificate, cfg.CACertFile)
	}

	tlsConfig.RootCAs = pool

	return tlsConfig, nil
}
