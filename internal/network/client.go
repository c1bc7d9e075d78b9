package network

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

var ErrRequestFailed = errors.New("request failed")

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Client is the HTTP transport board fetchers share. Each request draws
// the next proxy from the rotator when one is configured.
type Client struct {
	http      tls_client.HttpClient
	rotator   *Rotator
	userAgent string
}

// NewClient builds a transport with the Chrome TLS profile. When caCert
// names a PEM bundle on disk, its certificates replace the system roots
// for server verification.
func NewClient(rotator *Rotator, userAgent, caCert string) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	options := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(30),
		tls_client.WithCookieJar(jar),
	}
	if caCert != "" {
		pool, err := loadCertPool(caCert)
		if err != nil {
			return nil, err
		}
		options = append(options, tls_client.WithTransportOptions(&tls_client.TransportOptions{
			RootCAs: pool,
		}))
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, err
	}

	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		http:      client,
		rotator:   rotator,
		userAgent: userAgent,
	}, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("CA bundle %s: no PEM certificates found", path)
	}
	return pool, nil
}

func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	proxy, _ := c.rotateProxy()
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	return resp, nil
}

// UseProxy pins the transport to a specific proxy, overriding rotation for
// subsequent requests. Used when the scrape client has already drawn one.
func (c *Client) UseProxy(proxy string) error {
	if proxy == "" {
		return nil
	}
	if _, err := url.Parse(proxy); err != nil {
		return err
	}
	return c.http.SetProxy(proxy)
}

func (c *Client) rotateProxy() (*url.URL, error) {
	if c.rotator == nil {
		return nil, nil
	}
	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}

	if proxy != nil {
		_ = c.http.SetProxy(proxy.String())
	}
	return proxy, nil
}
