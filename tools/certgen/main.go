// Package main writes the development PKI for running the StockKeeper API
// over HTTPS: ca.crt/ca.key and server.crt/server.key under -dir.
//
//	go run ./tools/certgen -dir certs -hosts localhost,127.0.0.1
//	server: -tls-cert certs/server.crt -tls-key certs/server.key
//	client: CA_FILE=certs/ca.crt
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/StockKeeper/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server DNS names and IPs")
	validity := flag.Duration("validity", 365*24*time.Hour, "server certificate validity")
	reuse := flag.Bool("reuse-ca", true, "sign with an existing ca.crt/ca.key in -dir when present")
	flag.Parse()

	if err := run(*dir, strings.Split(*hosts, ","), *validity, *reuse); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
	fmt.Printf("Certificates written to %s\n", *dir)
}

func run(dir string, hosts []string, validity time.Duration, reuse bool) error {
	for i := range hosts {
		hosts[i] = strings.TrimSpace(hosts[i])
	}

	caCert, caKey := filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")
	var ca *certgen.Authority
	if reuse {
		if loaded, err := certgen.LoadAuthority(caCert, caKey); err == nil {
			ca = loaded
		}
	}
	if ca == nil {
		created, err := certgen.NewAuthority("StockKeeper Dev CA", 10*365*24*time.Hour)
		if err != nil {
			return err
		}
		keyPEM, err := created.KeyPEM()
		if err != nil {
			return err
		}
		if err := certgen.WritePair(dir, "ca", created.CertPEM(), keyPEM); err != nil {
			return err
		}
		ca = created
	}

	certPEM, keyPEM, err := ca.IssueServer(hosts, validity)
	if err != nil {
		return err
	}
	return certgen.WritePair(dir, "server", certPEM, keyPEM)
}
