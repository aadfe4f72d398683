// Package token はアクセストークン（HS512署名のJWT）の発行と検証を提供する。
//
// トークンはサーバー側に保存しないステートレス方式で、単一の共有秘密鍵で署名する。
// 検証失敗はすべてErrInvalidTokenに集約し、どの検査で失敗したかをクライアントに漏らさない。
// 原因はラップして保持するため、サーバー側のログでは参照できる。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/automata/internal/model"
)

// TypeBearer はAuthorizationヘッダーで使用するトークン種別。
const TypeBearer = "Bearer"

// ErrInvalidToken は署名・発行者・受信者・有効期限・形式のいずれかの検証に失敗したことを示す。
var ErrInvalidToken = errors.New("invalid token")

var signingMethod = jwt.SigningMethodHS512

// Config はCodecの設定。起動時に1回だけ構築する。
type Config struct {
	Issuer    string
	Audience  string
	SecretKey []byte
	Validity  time.Duration
	// Location は発行日時・有効期限を表現するタイムゾーン。nilの場合はUTC。
	Location *time.Location
}

// AccessToken はログイン成功時にクライアントへ返すトークン。
type AccessToken struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Details は検証済みトークンから復元したクレーム。
type Details struct {
	TokenID   string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec はトークンの発行と検証を行う。
// 生成後は読み取り専用のため、複数goroutineから同時に利用できる。
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	validity time.Duration
	loc      *time.Location
	now      func() time.Time
	newID    func() string
}

// Option はCodecの生成オプション。
type Option func(*Codec)

// WithClock は現在時刻の取得関数を差し替える（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec はCodecを生成する。
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, errors.New("token: secret key is required")
	}
	if cfg.Validity <= 0 {
		return nil, fmt.Errorf("token: validity must be positive, got %v", cfg.Validity)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	c := &Codec{
		secret:   append([]byte(nil), cfg.SecretKey...),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		validity: cfg.Validity,
		loc:      loc,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue はユーザーのアクセストークンを発行する。
// subjectはユーザー名、有効期限は発行時刻 + 設定された有効期間。
func (c *Codec) Issue(user *model.User) (*AccessToken, error) {
	if user == nil || user.Username == "" {
		return nil, errors.New("token: user with a username is required")
	}

	// NumericDateは秒精度のため、発行時刻を秒に切り詰めてから有効期限を計算する
	issuedAt := c.now().In(c.loc).Truncate(time.Second)
	expiresAt := issuedAt.Add(c.validity)

	claims := jwt.RegisteredClaims{
		ID:        c.newID(),
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{c.audience},
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AccessToken{
		AccessToken: signed,
		TokenType:   TypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// Parse はトークンを検証し、クレームを返す。
// 失敗時は常にErrInvalidTokenをラップしたエラーを返す。
func (c *Codec) Parse(raw string) (*Details, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing issued at", ErrInvalidToken)
	}

	return &Details{
		TokenID:   claims.ID,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time.In(c.loc),
		ExpiresAt: claims.ExpiresAt.Time.In(c.loc),
	}, nil
}
