package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// MakeTLSConfig builds a client config that trusts the given CA. A client
// certificate is loaded only when both cert and key paths are set.
func MakeTLSConfig(ca, cert, key string) (*tls.Config, error) {
	const op = "MakeTLSConfig"

	caCert, err := os.ReadFile(ca)
	if err != nil {
		return nil, opErr(fmt.Errorf("failed to read CA certificate file: %w", err), op)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, opErr(errors.New("failed to parse CA certificate"), op)
	}

	cfg := &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}

	if cert == "" || key == "" {
		return cfg, nil
	}

	clientCert, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, opErr(err, op)
	}
	cfg.Certificates = []tls.Certificate{clientCert}

	return cfg, nil
}
