package usecase

import (
	"testing"
	"time"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginAndVerify(t *testing.T) {
	uc := NewAuthUC(&cfg.AuthCfg{Password: "s3cret", SessionSecret: []byte("0123456789abcdef0123456789abcdef"), SessionTTL: time.Hour})
	require.True(t, uc.Enabled())

	_, err := uc.Login("wrong")
	assert.ErrorIs(t, err, e.ErrInvalidPassword)

	session, err := uc.Login("s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.NoError(t, uc.Verify(session.Token))

	assert.ErrorIs(t, uc.Verify(""), e.ErrUnauthorized)
	assert.ErrorIs(t, uc.Verify(session.Token+"x"), e.ErrUnauthorized)
}

func TestAuth_Expired(t *testing.T) {
	uc := NewAuthUC(&cfg.AuthCfg{Password: "p", SessionSecret: []byte("secret"), SessionTTL: time.Minute})
	issued := time.Now()
	uc.now = func() time.Time { return issued }

	session, err := uc.Login("p")
	require.NoError(t, err)

	uc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	assert.ErrorIs(t, uc.Verify(session.Token), e.ErrUnauthorized)
}

func TestAuth_ForeignSecret(t *testing.T) {
	a := NewAuthUC(&cfg.AuthCfg{Password: "p", SessionSecret: []byte("one"), SessionTTL: time.Hour})
	b := NewAuthUC(&cfg.AuthCfg{Password: "p", SessionSecret: []byte("two"), SessionTTL: time.Hour})

	session, err := a.Login("p")
	require.NoError(t, err)
	assert.ErrorIs(t, b.Verify(session.Token), e.ErrUnauthorized)
}

func TestAuth_OpenAccess(t *testing.T) {
	uc := NewAuthUC(&cfg.AuthCfg{SessionSecret: []byte("x"), SessionTTL: time.Hour})

	assert.False(t, uc.Enabled())
	assert.NoError(t, uc.Verify(""))
	_, err := uc.Login("anything")
	assert.NoError(t, err)
}
