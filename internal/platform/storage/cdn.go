// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CDNSigner produces Cloud CDN signed URLs.
//
// The signed string is "<url>?Expires=<unix>&KeyName=<name>" and the signature
// is the URL-safe base64 HMAC-SHA1 of that string under the decoded key.
type CDNSigner struct {
	baseURL string
	keyName string
	key     []byte
}

// NewCDNSigner decodes the base64url signing key registered with the CDN backend.
func NewCDNSigner(baseURL, keyName, encodedKey string) (*CDNSigner, error) {
	key, err := base64.URLEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid CDN signing key: %w", err)
	}

	return &CDNSigner{
		baseURL: strings.TrimRight(baseURL, "/"),
		keyName: keyName,
		key:     key,
	}, nil
}

// Sign returns the signed URL for storageKey valid until expires.
func (signer *CDNSigner) Sign(storageKey string, expires time.Time) (string, error) {
	objectURL := signer.baseURL + "/" + escapeKey(storageKey)

	unsigned := objectURL + "?Expires=" + strconv.FormatInt(expires.Unix(), 10) +
		"&KeyName=" + url.QueryEscape(signer.keyName)

	mac := hmac.New(sha1.New, signer.key)
	if _, err := mac.Write([]byte(unsigned)); err != nil {
		return "", fmt.Errorf("storage: failed to sign CDN url: %w", err)
	}

	signature := base64.URLEncoding.EncodeToString(mac.Sum(nil))
	return unsigned + "&Signature=" + signature, nil
}

// escapeKey escapes each path segment but keeps the separators.
func escapeKey(storageKey string) string {
	segments := strings.Split(strings.TrimLeft(storageKey, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
