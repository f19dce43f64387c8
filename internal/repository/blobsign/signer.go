// Package blobsign resolves catalog image references to servable https
// URLs. References come in two shapes: plain http(s) URLs, passed
// through untouched, and obj://bucket/path storage refs, rewritten to an
// expiring HMAC-signed CDN URL. Placeholder objects (.keep) resolve to
// nothing.
package blobsign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const objScheme = "obj://"

var bucketRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{1,61}[a-z0-9]$`)

// Signer builds expiring signed URLs for private blob storage refs.
type Signer struct {
	baseURL string
	secret  []byte
	expiry  time.Duration
	now     func() time.Time
}

// New creates a signer. baseURL is the CDN origin fronting the blob
// store (e.g. https://cdn.example.com).
func New(baseURL, secret string, expiry time.Duration) *Signer {
	return &Signer{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		expiry:  expiry,
		now:     time.Now,
	}
}

// Resolve turns a raw reference into an https URL. The second return is
// false when the ref cannot be resolved and should be omitted.
func (s *Signer) Resolve(ref string) (string, bool) {
	if ref == "" || strings.Contains(ref, "/.keep") {
		return "", false
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, true
	}
	if strings.HasPrefix(ref, objScheme) {
		return s.sign(ref)
	}
	return "", false
}

// sign rewrites obj://bucket/path to baseURL/bucket/path?expires=..&sig=..
func (s *Signer) sign(ref string) (string, bool) {
	if s.baseURL == "" || len(s.secret) == 0 {
		return "", false
	}

	rest := strings.TrimPrefix(ref, objScheme)
	bucket, path, ok := strings.Cut(rest, "/")
	if !ok || path == "" || !bucketRe.MatchString(bucket) {
		return "", false
	}

	expires := s.now().Add(s.expiry).Unix()
	payload := fmt.Sprintf("%s/%s:%d", bucket, path, expires)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	sig := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)

	return fmt.Sprintf("%s/%s/%s?%s", s.baseURL, bucket, path, q.Encode()), true
}
