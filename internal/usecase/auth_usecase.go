package usecase

import (
	"crypto/subtle"
	"time"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jimlawless/whereami"
)

const sessionSubject = "operator"

// AuthUseCase — вход по общему паролю приложения. Сессия — JWT, подписанный HS256.
// Без пароля в конфигурации доступ открыт.
type AuthUseCase struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthUC(cfg *cfg.AuthCfg) *AuthUseCase {
	return &AuthUseCase{
		password: []byte(cfg.Password),
		secret:   []byte(cfg.SessionSecret),
		ttl:      cfg.SessionTTL,
		now:      time.Now,
	}
}

func (a *AuthUseCase) Enabled() bool {
	return len(a.password) > 0
}

// Login сверяет пароль за постоянное время и выпускает токен сессии.
func (a *AuthUseCase) Login(password string) (*Session, error) {
	if !a.Enabled() {
		return &Session{}, nil
	}

	if subtle.ConstantTimeCompare([]byte(password), a.password) != 1 {
		return nil, e.ErrInvalidPassword
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify проверяет подпись и срок действия токена.
func (a *AuthUseCase) Verify(token string) error {
	if !a.Enabled() {
		return nil
	}
	if token == "" {
		return e.ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(sessionSubject),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return e.Wrap(err.Error(), e.ErrUnauthorized)
	}

	return nil
}
