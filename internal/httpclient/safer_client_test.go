package httpclient

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		errContains string
	}{
		{"https", "https://iopscience.iop.org/0004-637X/619/2/743/fulltext/tb1.txt", ""},
		{"http", "http://example.com", ""},
		{"file scheme", "file:///etc/passwd", "scheme"},
		{"ftp scheme", "ftp://example.com", "scheme"},
		{"localhost", "http://localhost/admin", "localhost"},
		{"localhost subdomain", "http://api.localhost/", "localhost"},
		{"loopback", "http://127.0.0.1:8080/", "private"},
		{"rfc1918", "http://192.168.1.10/", "private"},
		{"link local metadata", "http://169.254.169.254/latest/meta-data", "private"},
		{"ipv6 loopback", "http://[::1]/", "private"},
		{"user info", "http://evil.com@example.com/", "user info"},
		{"no host", "http:///path", "hostname"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateURL(tt.url, false)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateURL_AllowPrivate(t *testing.T) {
	_, err := ValidateURL("http://127.0.0.1:8080/table.txt", true)
	assert.NoError(t, err)
	_, err = ValidateURL("file:///etc/passwd", true)
	assert.Error(t, err, "scheme is checked regardless")
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"10.1.2.3", "172.16.0.1", "192.168.0.1", "127.0.0.1", "169.254.1.1", "0.0.0.0", "224.0.0.1", "240.0.0.1", "100.64.0.1", "::1", "fe80::1", "fc00::1", "fec0::1", "2001:db8::1"}
	for _, s := range private {
		assert.True(t, IsPrivateIP(net.ParseIP(s)), s)
	}
	public := []string{"8.8.8.8", "130.88.1.1", "2606:4700:4700::1111"}
	for _, s := range public {
		assert.False(t, IsPrivateIP(net.ParseIP(s)), s)
	}
	assert.False(t, IsPrivateIP(nil))
}

func TestClientBlocksLoopback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := New(Options{Timeout: 5 * time.Second}).Get(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private IP address blocked")

	resp, err := New(Options{Timeout: 5 * time.Second, AllowPrivate: true}).Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientRedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/again", http.StatusFound)
	}))
	defer server.Close()

	_, err := New(Options{AllowPrivate: true, MaxRedirects: 3}).Get(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 3 redirects")
}
