// Package cookies exports browser cookies into Netscape cookie files for the downloader.
package cookies

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
	"zeku/internal/parsing"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
)

const netscapeHeader = "# Netscape HTTP Cookie File\n# https://curl.haxx.se/rfc/cookie_spec.html\n# This is a generated file! Do not edit.\n\n"

// Reader loads the cookies stored for a domain.
type Reader func(ctx context.Context, domain string) ([]*http.Cookie, error)

// Exporter writes the cookies of a URL's site to a file.
type Exporter struct {
	read           Reader
	domainOverride string
}

// NewExporter returns an Exporter reading every installed browser. A non-empty
// domainOverride replaces the domain derived from each URL.
func NewExporter(domainOverride string) *Exporter {
	return &Exporter{read: readBrowserCookies, domainOverride: domainOverride}
}

// Export writes the cookies for rawURL to path and returns how many were
// written. No file is created when there are none.
func (e *Exporter) Export(ctx context.Context, rawURL, path string) (int, error) {
	domain := e.domainOverride
	if domain == "" {
		var err error
		if domain, err = parsing.BaseDomain(rawURL); err != nil {
			return 0, fmt.Errorf("error extracting base domain in cookie grab: %w", err)
		}
	}

	cookies, err := e.read(ctx, domain)
	if err != nil {
		return 0, err
	}
	if len(cookies) == 0 {
		logger.Pl.D(1, "No cookies found for %s, won't use '--cookies'", domain)
		return 0, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.PermsCookieFile)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Pl.E("Failed to close file %q due to error: %v", path, err)
		}
	}()

	if err := WriteNetscape(f, cookies, domain); err != nil {
		return 0, err
	}
	logger.Pl.D(1, "Saved %d cookies for %s to %s", len(cookies), domain, path)
	return len(cookies), nil
}

// WriteNetscape writes cookies in Netscape format. fallbackDomain is used for
// cookies without a domain.
func WriteNetscape(w io.Writer, cookies []*http.Cookie, fallbackDomain string) error {
	if _, err := io.WriteString(w, netscapeHeader); err != nil {
		return err
	}

	for _, cookie := range cookies {
		domain := cookie.Domain
		if domain == "" {
			domain = fallbackDomain
		}
		if !strings.HasPrefix(domain, ".") && strings.Count(domain, ".") > 1 {
			domain = "." + domain
		}

		includeSubdomains := "FALSE"
		if strings.HasPrefix(domain, ".") {
			includeSubdomains = "TRUE"
		}

		secure := "FALSE"
		if cookie.Secure {
			secure = "TRUE"
		}

		path := cookie.Path
		if path == "" {
			path = "/"
		}

		var expires int64
		if !cookie.Expires.IsZero() {
			expires = cookie.Expires.Unix()
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, includeSubdomains, path, secure, expires, cookie.Name, cookie.Value); err != nil {
			return err
		}
	}
	return nil
}

// readBrowserCookies reads valid cookies for domain from every browser store.
func readBrowserCookies(ctx context.Context, domain string) ([]*http.Cookie, error) {
	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.Domain(domain))
	if err != nil && len(kookyCookies) == 0 {
		logger.Pl.D(2, "Failed reading cookies: %v", err)
		return nil, nil
	}

	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Secure:  c.Secure,
			Expires: c.Expires,
		}
	}
	return httpCookies, nil
}
