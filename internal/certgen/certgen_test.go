package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/StockKeeper/internal/client/api"
)

func TestIssueServer_VerifiesAgainstAuthority(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	require.NoError(t, err)
	assert.True(t, ca.Cert.IsCA)

	certPEM, _, err := ca.IssueServer([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)

	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", cert.IPAddresses[0].String())

	roots := x509.NewCertPool()
	roots.AddCert(ca.Cert)
	_, err = cert.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: roots})
	assert.NoError(t, err)

	_, err = cert.Verify(x509.VerifyOptions{DNSName: "example.com", Roots: roots})
	assert.Error(t, err)
}

func TestIssueServer_NoHosts(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	require.NoError(t, err)
	_, _, err = ca.IssueServer(nil, time.Hour)
	assert.Error(t, err)
}

func TestLoadAuthority_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ca, err := NewAuthority("Test CA", time.Hour)
	require.NoError(t, err)
	keyPEM, err := ca.KeyPEM()
	require.NoError(t, err)
	require.NoError(t, WritePair(dir, "ca", ca.CertPEM(), keyPEM))

	info, err := os.Stat(filepath.Join(dir, "ca.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadAuthority(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key"))
	require.NoError(t, err)
	assert.True(t, loaded.Cert.Equal(ca.Cert))
	assert.True(t, loaded.Key.Equal(ca.Key))
}

func TestLoadAuthority_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not pem"), 0o600))

	_, err := LoadAuthority(filepath.Join(dir, "missing.crt"), bad)
	assert.ErrorContains(t, err, "read ca cert")

	_, err = LoadAuthority(bad, bad)
	assert.ErrorContains(t, err, "invalid CA cert PEM")
}

// TestHTTPClientTrustsIssuedCertificate serves HTTPS with an issued
// certificate and reaches it through a client configured with the CA file.
func TestHTTPClientTrustsIssuedCertificate(t *testing.T) {
	dir := t.TempDir()
	ca, err := NewAuthority("Test CA", time.Hour)
	require.NoError(t, err)
	caKey, err := ca.KeyPEM()
	require.NoError(t, err)
	require.NoError(t, WritePair(dir, "ca", ca.CertPEM(), caKey))

	certPEM, keyPEM, err := ca.IssueServer([]string{"127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{pair}}
	srv.StartTLS()
	defer srv.Close()

	hc, err := api.NewHTTPClient(filepath.Join(dir, "ca.crt"), 5*time.Second)
	require.NoError(t, err)
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	plain, err := api.NewHTTPClient("", 5*time.Second)
	require.NoError(t, err)
	_, err = plain.Get(srv.URL)
	assert.Error(t, err, "system roots must not trust the development CA")
}
