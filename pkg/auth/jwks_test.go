package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwkFor(kid string, pub *rsa.PublicKey) JSONWebKey {
	return JSONWebKey{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

func TestProviderVerifiesRS256(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(JWKS{Keys: []JSONWebKey{
			jwkFor("k1", &priv.PublicKey),
			{Kid: "ec", Kty: "EC"},
		}})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL)
	require.True(t, p.Configured())

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "9", "role": "candidate"})
	token.Header["kid"] = "k1"
	signed, err := token.SignedString(priv)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, p.KeyFunc)
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	// Cached after the first download.
	_, err = jwt.Parse(signed, p.KeyFunc)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = p.GetKey("missing")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestProviderRejectsHMAC(t *testing.T) {
	p := NewProvider("http://127.0.0.1:0")
	token := jwt.New(jwt.SigningMethodHS256)
	_, err := p.KeyFunc(token)
	assert.Error(t, err)
}

func TestProviderNotConfigured(t *testing.T) {
	p := NewProvider("")
	assert.False(t, p.Configured())
	_, err := p.GetKey("k1")
	assert.Error(t, err)
}
