package blobstore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DefaultURLTTL is how long a signed photo URL stays valid.
const DefaultURLTTL = 365 * 24 * time.Hour

var (
	ErrBadSignature = errors.New("blobstore: bad signature")
	ErrURLExpired   = errors.New("blobstore: url expired")
)

// Signer issues and checks HMAC-signed photo URLs.
type Signer struct {
	key     []byte
	ttl     time.Duration
	baseURL string
	now     func() time.Time
}

// NewSigner creates a Signer. URLs are rooted at baseURL (for example
// "http://localhost:8080/photos").
func NewSigner(key []byte, baseURL string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Signer{key: key, ttl: ttl, baseURL: baseURL, now: time.Now}
}

// URL returns a signed URL for key.
func (s *Signer) URL(key string) string {
	exp := s.now().Add(s.ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(exp, 10))
	q.Set("sig", s.sign(key, exp))
	return s.baseURL + "/" + key + "?" + q.Encode()
}

// Verify checks the signature and expiry carried by a photo URL.
func (s *Signer) Verify(key, expires, sig string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: expires %q", ErrBadSignature, expires)
	}
	want := s.sign(key, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrBadSignature
	}
	if s.now().Unix() > exp {
		return ErrURLExpired
	}
	return nil
}

func (s *Signer) sign(key string, exp int64) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(exp, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Checksum returns the hex-encoded SHA-256 digest of data, used as the
// photo's ETag.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
