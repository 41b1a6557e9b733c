package identity

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// securetokenJWKSURL publishes the RSA keys Firebase signs ID tokens with.
const securetokenJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// keySet caches the provider's RSA public keys by kid and refreshes them
// in the background.
type keySet struct {
	url    string
	mu     sync.RWMutex
	keys   map[string]*rsa.PublicKey
	ticker *time.Ticker
	quit   chan struct{}
}

func newKeySet(url string, refreshInterval time.Duration) (*keySet, error) {
	if refreshInterval <= 0 {
		refreshInterval = 15 * time.Minute
	}
	ks := &keySet{
		url:    url,
		keys:   map[string]*rsa.PublicKey{},
		ticker: time.NewTicker(refreshInterval),
		quit:   make(chan struct{}),
	}
	if err := ks.refresh(); err != nil {
		return nil, err
	}
	go ks.loop()
	return ks, nil
}

func (ks *keySet) loop() {
	for {
		select {
		case <-ks.ticker.C:
			_ = ks.refresh()
		case <-ks.quit:
			return
		}
	}
}

func (ks *keySet) close() {
	close(ks.quit)
	ks.ticker.Stop()
}

func (ks *keySet) refresh() error {
	resp, err := http.Get(ks.url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var raw struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return err
	}

	newKeys := make(map[string]*rsa.PublicKey)
	for _, k := range raw.Keys {
		if k.Kty != "RSA" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return err
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return err
		}
		e := 0
		for _, b := range eBytes {
			e = (e << 8) + int(b)
		}
		newKeys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys = newKeys
	return nil
}

func (ks *keySet) get(kid string) (*rsa.PublicKey, error) {
	ks.mu.RLock()
	p := ks.keys[kid]
	ks.mu.RUnlock()
	if p != nil {
		return p, nil
	}
	// Unknown kid usually means a rotation happened; try one refresh.
	if err := ks.refresh(); err != nil {
		return nil, err
	}
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	p = ks.keys[kid]
	if p == nil {
		return nil, errors.New("signing key not found")
	}
	return p, nil
}
