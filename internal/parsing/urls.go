package parsing

import (
	"bufio"
	"net/url"
	"os"
	"strings"

	"zeku/internal/domain/logger"

	"golang.org/x/net/publicsuffix"
)

// BaseDomain returns the registrable domain (eTLD+1) of rawURL.
func BaseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return publicsuffix.EffectiveTLDPlusOne(u.Hostname())
}

// Website returns the site label of rawURL, e.g. "youtube" for
// https://www.youtube.com/watch?v=x. Unparseable input returns "".
func Website(rawURL string) string {
	domain, err := BaseDomain(rawURL)
	if err != nil {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(domain)
	return strings.TrimSuffix(domain, "."+suffix)
}

// ReadURLFile returns the distinct URLs of a file in file order.
//
// Users should put a single URL on each line in the file for proper parsing.
// Hashtags exclude lines (i.e. '# Comment').
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Pl.E("Failed to close file %q: %v", path, err)
		}
	}()

	seen := make(map[string]struct{})
	urls := []string{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		u := strings.TrimSpace(scanner.Text())
		if u == "" || strings.HasPrefix(u, "#") {
			continue
		}

		parsedURL, err := url.Parse(u)
		if err != nil || parsedURL.Host == "" {
			logger.Pl.E("URL %q is invalid: %v", u, err)
			continue
		}
		if _, ok := seen[parsedURL.String()]; ok {
			continue
		}
		seen[parsedURL.String()] = struct{}{}
		urls = append(urls, parsedURL.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}
